package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// userDocument is the BSON shape of a user in the users collection.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	Subscription string             `bson:"subscription"`
	Token        *string            `bson:"token"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *userDocument) toUser() *User {
	return &User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		Subscription: Subscription(d.Subscription),
		Token:        d.Token,
		CreatedAt:    d.CreatedAt,
	}
}

// mongoUserRepository implements UserRepository on a MongoDB collection.
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a user repository backed by coll. The
// collection should carry a unique index on email.
func NewMongoUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepository{coll: coll}
}

// Create inserts a new user document.
func (r *mongoUserRepository) Create(ctx context.Context, user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Email:        user.Email,
		Password:     user.PasswordHash,
		Subscription: string(user.Subscription),
		Token:        user.Token,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.NewConflict(msgEmailInUse)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// FindByID retrieves a user by ObjectID hex. Malformed ids cannot match any
// document and are reported as not found.
func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NewNotFound("user not found")
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail retrieves a user by email.
func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// EmailExists returns true if a user with the given email already exists.
func (r *mongoUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return n > 0, nil
}

// SetToken overwrites the stored session token.
func (r *mongoUserRepository) SetToken(ctx context.Context, id string, token *string) error {
	return r.updateFields(ctx, id, bson.M{"token": token})
}

// UpdateSubscription sets the user's plan tier.
func (r *mongoUserRepository) UpdateSubscription(ctx context.Context, id string, sub Subscription) error {
	return r.updateFields(ctx, id, bson.M{"subscription": string(sub)})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return doc.toUser(), nil
}

func (r *mongoUserRepository) updateFields(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewNotFound("user not found")
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}
