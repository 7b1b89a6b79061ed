package contacts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// Client-facing messages.
const (
	msgNotFound        = "Not found"
	msgMissingFields   = "Missing fields"
	msgMissingFavorite = "missing field favorite"
	msgContactDeleted  = "Contact deleted"
)

// ContactService defines the business logic contract for contacts. actor is
// the authenticated user's id; every method is scoped to it.
type ContactService interface {
	List(ctx context.Context, actor string, opts ListOptions) ([]Contact, error)
	Get(ctx context.Context, actor, id string) (*Contact, error)
	Create(ctx context.Context, actor string, input CreateInput) (*Contact, error)
	Update(ctx context.Context, actor, id string, upd Update) (*Contact, error)
	Delete(ctx context.Context, actor, id string) error
	SetFavorite(ctx context.Context, actor, id string, favorite bool) (*Contact, error)
}

// CreateInput is the validated input for creating a contact.
type CreateInput struct {
	Name     string
	Email    string
	Phone    string
	Favorite bool
}

// contactService implements ContactService.
type contactService struct {
	repo ContactRepository
}

// NewContactService creates a new contact service backed by repo.
func NewContactService(repo ContactRepository) ContactService {
	return &contactService{repo: repo}
}

// List returns one page of the actor's contacts.
func (s *contactService) List(ctx context.Context, actor string, opts ListOptions) ([]Contact, error) {
	contacts, err := s.repo.List(ctx, actor, opts.normalize())
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing contacts: %w", err))
	}
	return contacts, nil
}

// Get returns a contact the actor owns.
func (s *contactService) Get(ctx context.Context, actor, id string) (*Contact, error) {
	return s.loadOwned(ctx, actor, id)
}

// Create adds a contact owned by the actor.
func (s *contactService) Create(ctx context.Context, actor string, input CreateInput) (*Contact, error) {
	contact := &Contact{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Favorite: input.Favorite,
		Owner:    actor,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating contact: %w", err))
	}

	slog.Info("contact created",
		slog.String("contact_id", contact.ID),
		slog.String("owner", actor),
	)
	return contact, nil
}

// Update applies a partial update to a contact the actor owns and returns
// the updated record.
func (s *contactService) Update(ctx context.Context, actor, id string, upd Update) (*Contact, error) {
	if upd.Empty() {
		return nil, apperror.NewValidation(msgMissingFields)
	}
	return s.patch(ctx, actor, id, upd)
}

// Delete removes a contact the actor owns.
func (s *contactService) Delete(ctx context.Context, actor, id string) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound(msgNotFound)
		}
		return apperror.NewInternal(fmt.Errorf("deleting contact: %w", err))
	}

	slog.Info("contact deleted",
		slog.String("contact_id", id),
		slog.String("owner", actor),
	)
	return nil
}

// SetFavorite changes only the favorite flag.
func (s *contactService) SetFavorite(ctx context.Context, actor, id string, favorite bool) (*Contact, error) {
	return s.patch(ctx, actor, id, Update{Favorite: &favorite})
}

// patch is the ownership-gated write shared by Update and SetFavorite.
func (s *contactService) patch(ctx context.Context, actor, id string, upd Update) (*Contact, error) {
	contact, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, upd); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating contact: %w", err))
	}

	upd.apply(contact)
	return contact, nil
}

// loadOwned fetches a contact and applies belongsTo. Missing, malformed, and
// foreign ids all produce the same 404.
func (s *contactService) loadOwned(ctx context.Context, actor, id string) (*Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding contact: %w", err))
	}
	if !belongsTo(contact, actor) {
		return nil, apperror.NewNotFound(msgNotFound)
	}
	return contact, nil
}
