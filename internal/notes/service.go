package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

type notesRepository interface {
	Create(ctx context.Context, note *models.PartnerNote) (*models.PartnerNote, error)
	List(ctx context.Context, partnerID uuid.UUID, visibilities []enums.NoteVisibility) ([]models.PartnerNote, error)
}

type partnersFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

// AddNoteInput carries the note body and its audience.
type AddNoteInput struct {
	Note       string               `json:"note" validate:"required"`
	Visibility enums.NoteVisibility `json:"visibility" validate:"required"`
}

// Service exposes partner note operations.
type Service interface {
	AddNote(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input AddNoteInput) (*models.PartnerNote, error)
	ListNotes(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerNote, error)
}

type service struct {
	repo        notesRepository
	partnerRepo partnersFinder
}

// NewService constructs the notes service.
func NewService(repo notesRepository, partnerRepo partnersFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notes repository is required")
	}
	if partnerRepo == nil {
		return nil, fmt.Errorf("partner repository is required")
	}
	return &service{repo: repo, partnerRepo: partnerRepo}, nil
}

// AddNote appends a note to the partner record. Only internal staff write
// notes; the visibility flag decides whether the partner sees it.
func (s *service) AddNote(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input AddNoteInput) (*models.PartnerNote, error) {
	if err := partners.RequireCapability(actor, partners.CapabilityViewDirectory); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(input.Note)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note text is required")
	}
	if !input.Visibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid note visibility")
	}

	if _, err := s.loadPartner(ctx, partnerID); err != nil {
		return nil, err
	}

	note, err := s.repo.Create(ctx, &models.PartnerNote{
		PartnerID:     partnerID,
		Note:          body,
		Visibility:    input.Visibility,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create note")
	}
	return note, nil
}

// ListNotes returns the notes the actor is allowed to see. Partner owners
// only see partner-visible notes.
func (s *service) ListNotes(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerNote, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !partners.CanRead(actor, partner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this partner")
	}

	var visibilities []enums.NoteVisibility
	if partners.Owns(actor, partner) {
		visibilities = []enums.NoteVisibility{enums.NoteVisibilityPartnerVisible}
	}

	rows, err := s.repo.List(ctx, partnerID, visibilities)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notes")
	}
	return rows, nil
}

func (s *service) loadPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner")
	}
	return partner, nil
}
