package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

var maxFinalRate = decimal.NewFromInt(100)

type partnersFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

type productsFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type commissionRepository interface {
	AssignTier(ctx context.Context, partnerID uuid.UUID, expected enums.PartnerStatus, tier enums.PartnerTier, assignedBy uuid.UUID, entry *audit.Entry) (*models.Partner, error)
	ReplaceAssignments(ctx context.Context, partnerID uuid.UUID, expected enums.PartnerStatus, payout enums.PayoutPeriod, rows []models.PartnerProductCommission, entry *audit.Entry) (*models.Partner, error)
	ListAssignments(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerProductCommission, error)
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event notifications.Event)
}

// ProductAssignment is one requested product with its negotiated margin.
type ProductAssignment struct {
	ProductID    uuid.UUID       `json:"product_id" validate:"required"`
	CustomMargin decimal.Decimal `json:"custom_margin"`
}

// AssignProductsInput carries a full replacement commission set.
type AssignProductsInput struct {
	PayoutPeriod enums.PayoutPeriod  `json:"payout_period" validate:"required"`
	Assignments  []ProductAssignment `json:"assignments" validate:"required,dive"`
}

// Service exposes tier assignment and product commission assignment.
type Service interface {
	AssignTier(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, tier enums.PartnerTier) (*models.Partner, error)
	AssignProducts(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input AssignProductsInput) (*models.Partner, error)
	ListAssignments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerProductCommission, error)
}

type service struct {
	repo        commissionRepository
	partnerRepo partnersFinder
	productRepo productsFinder
	events      eventDispatcher
}

// NewService builds the commission service.
func NewService(repo commissionRepository, partnerRepo partnersFinder, productRepo productsFinder, events eventDispatcher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if partnerRepo == nil {
		return nil, fmt.Errorf("partner repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event dispatcher required")
	}
	return &service{repo: repo, partnerRepo: partnerRepo, productRepo: productRepo, events: events}, nil
}

// Tier is locked in before review completes; it feeds the L1/L2 decision.
var tierAssignableStatuses = []enums.PartnerStatus{
	enums.PartnerStatusDraft,
	enums.PartnerStatusPendingL1,
}

func (s *service) AssignTier(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, tier enums.PartnerTier) (*models.Partner, error) {
	if err := partners.RequireCapability(actor, partners.CapabilityManage); err != nil {
		return nil, err
	}
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !statusIn(partner.Status, tierAssignableStatuses...) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "tier can only be assigned before first-level review completes")
	}

	updated, err := s.repo.AssignTier(ctx, partnerID, partner.Status, tier, actor.ID, &audit.Entry{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    "partner.assign_tier",
		Before:    partners.Snapshot(partner),
	})
	if err != nil {
		return nil, assignmentError(err, "assign tier")
	}
	return updated, nil
}

func (s *service) AssignProducts(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input AssignProductsInput) (*models.Partner, error) {
	if err := partners.RequireCapability(actor, partners.CapabilityManage); err != nil {
		return nil, err
	}
	if !input.PayoutPeriod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout period")
	}
	if len(input.Assignments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product assignment is required")
	}

	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != enums.PartnerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "products can only be assigned to approved partners")
	}

	ids := make([]uuid.UUID, 0, len(input.Assignments))
	seen := make(map[uuid.UUID]bool, len(input.Assignments))
	for _, assignment := range input.Assignments {
		if assignment.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if seen[assignment.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in assignment set")
		}
		seen[assignment.ProductID] = true
		ids = append(ids, assignment.ProductID)
	}

	catalog, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(catalog))
	for _, product := range catalog {
		byID[product.ID] = product
	}

	rows := make([]models.PartnerProductCommission, 0, len(input.Assignments))
	for _, assignment := range input.Assignments {
		product, ok := byID[assignment.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product in assignment set")
		}
		if !product.Eligible {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is not assignable", product.SKU))
		}

		finalRate := product.BaseCommissionRate.Add(assignment.CustomMargin)
		if finalRate.IsNegative() || finalRate.GreaterThan(maxFinalRate) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("final rate for %s must be between 0 and 100", product.SKU))
		}

		rows = append(rows, models.PartnerProductCommission{
			ProductID:          product.ID,
			ProductName:        product.Name,
			BaseCommissionRate: product.BaseCommissionRate,
			CustomMargin:       assignment.CustomMargin,
			FinalRate:          finalRate,
		})
	}

	updated, err := s.repo.ReplaceAssignments(ctx, partnerID, enums.PartnerStatusApproved, input.PayoutPeriod, rows, &audit.Entry{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    "partner.assign_products",
		Before:    partners.Snapshot(partner),
	})
	if err != nil {
		return nil, assignmentError(err, "assign products")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeCommissionAssigned,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Commission assigned",
		Message:         fmt.Sprintf("%d products assigned with a %s payout schedule.", len(rows), input.PayoutPeriod),
	})
	return updated, nil
}

func (s *service) ListAssignments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerProductCommission, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !partners.CanRead(actor, partner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this partner")
	}

	rows, err := s.repo.ListAssignments(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return rows, nil
}

func (s *service) loadPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup partner")
	}
	return partner, nil
}

func assignmentError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	if errors.Is(err, partners.ErrStatusChanged) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "partner status changed, reload and retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func statusIn(status enums.PartnerStatus, candidates ...enums.PartnerStatus) bool {
	for _, candidate := range candidates {
		if candidate == status {
			return true
		}
	}
	return false
}
