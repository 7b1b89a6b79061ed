package contacts

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// contactDocument is the BSON shape of a contact in the contacts collection.
// Owner references the user's _id.
type contactDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Phone    string             `bson:"phone"`
	Favorite bool               `bson:"favorite"`
	Owner    primitive.ObjectID `bson:"owner"`
}

func (d *contactDocument) toContact() *Contact {
	return &Contact{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Favorite:  d.Favorite,
		Owner:     d.Owner.Hex(),
		CreatedAt: d.ID.Timestamp(),
	}
}

// mongoContactRepository implements ContactRepository on a MongoDB
// collection.
type mongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository creates a contact repository backed by coll.
func NewMongoContactRepository(coll *mongo.Collection) ContactRepository {
	return &mongoContactRepository{coll: coll}
}

// List returns a page of the owner's contacts ordered by _id, which grows
// with insertion time.
func (r *mongoContactRepository) List(ctx context.Context, owner string, opts ListOptions) ([]Contact, error) {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return []Contact{}, nil
	}

	filter := bson.M{"owner": ownerID}
	if opts.Favorite != nil {
		filter["favorite"] = *opts.Favorite
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))

	cur, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer cur.Close(ctx)

	contacts := []Contact{}
	for cur.Next(ctx) {
		var doc contactDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding contact: %w", err)
		}
		contacts = append(contacts, *doc.toContact())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

// FindByID retrieves a contact by ObjectID hex. Malformed ids are reported
// as not found.
func (r *mongoContactRepository) FindByID(ctx context.Context, id string) (*Contact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NewNotFound("contact not found")
	}

	var doc contactDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NewNotFound("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding contact: %w", err)
	}
	return doc.toContact(), nil
}

// Create inserts a new contact document.
func (r *mongoContactRepository) Create(ctx context.Context, contact *Contact) error {
	ownerID, err := primitive.ObjectIDFromHex(contact.Owner)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", contact.Owner, err)
	}

	doc := contactDocument{
		ID:       primitive.NewObjectID(),
		Name:     contact.Name,
		Email:    contact.Email,
		Phone:    contact.Phone,
		Favorite: contact.Favorite,
		Owner:    ownerID,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	contact.ID = doc.ID.Hex()
	contact.CreatedAt = doc.ID.Timestamp()
	return nil
}

// Update $sets the fields present in upd.
func (r *mongoContactRepository) Update(ctx context.Context, id string, upd Update) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewNotFound("contact not found")
	}

	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Favorite != nil {
		set["favorite"] = *upd.Favorite
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}

// Delete removes a contact by id.
func (r *mongoContactRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewNotFound("contact not found")
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}
