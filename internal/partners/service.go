package partners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	pkgpagination "github.com/channelworks/partnerhub-backend/pkg/pagination"
)

type partnersRepository interface {
	Create(ctx context.Context, partner *models.Partner, entry *audit.Entry) (*models.Partner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	List(ctx context.Context, opts ListQuery) ([]models.Partner, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, expected enums.PartnerStatus, updates map[string]any, entry *audit.Entry) (*models.Partner, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Partner, error)
	ListApprovalSteps(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerApprovalStep, error)
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event notifications.Event)
}

// Service exposes the partner lifecycle: registration, directory reads, and
// every workflow transition of the two-level approval process.
type Service interface {
	CreatePartner(ctx context.Context, actor Actor, input CreatePartnerInput) (*models.Partner, error)
	GetPartner(ctx context.Context, actor Actor, partnerID uuid.UUID) (*Detail, error)
	ListPartners(ctx context.Context, actor Actor, params ListParams) (*ListResult, error)
	UpdateProfile(ctx context.Context, actor Actor, partnerID uuid.UUID, input UpdateProfileInput) (*models.Partner, error)

	SendToL1(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error)
	ApproveL1(ctx context.Context, actor Actor, partnerID uuid.UUID, input DecisionInput) (*models.Partner, error)
	RejectL1(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error)
	ApproveL2(ctx context.Context, actor Actor, partnerID uuid.UUID, input DecisionInput) (*models.Partner, error)
	RejectL2(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error)
	PutOnHold(ctx context.Context, actor Actor, partnerID uuid.UUID, input HoldInput) (*models.Partner, error)
	Resume(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error)
	SendBack(ctx context.Context, actor Actor, partnerID uuid.UUID, input SendBackInput) (*models.Partner, error)
	RejectPermanently(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error)
	Resubmit(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error)
}

type service struct {
	repo   partnersRepository
	events eventDispatcher
	now    func() time.Time
}

// NewService builds the partner lifecycle service.
func NewService(repo partnersRepository, events eventDispatcher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("partner repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event dispatcher required")
	}
	return &service{repo: repo, events: events, now: time.Now}, nil
}

func (s *service) CreatePartner(ctx context.Context, actor Actor, input CreatePartnerInput) (*models.Partner, error) {
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if actor.Role != enums.ActorRolePartner {
		if err := RequireCapability(actor, CapabilityManage); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required")
	}
	if strings.TrimSpace(input.BusinessType) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_type is required")
	}
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact_name is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact_email is required")
	}

	owner := input.OwnerUserID
	if actor.Role == enums.ActorRolePartner {
		// A partner user always owns the record it registers.
		id := actor.ID
		owner = &id
	}

	partner := &models.Partner{
		OwnerUserID:           owner,
		CreatedBy:             actor.ID,
		CreatedByRole:         actor.Role,
		CompanyName:           strings.TrimSpace(input.CompanyName),
		BusinessType:          strings.TrimSpace(input.BusinessType),
		TaxID:                 input.TaxID,
		YearsInBusiness:       input.YearsInBusiness,
		EmployeeCount:         input.EmployeeCount,
		ExpectedMonthlyVolume: input.ExpectedMonthlyVolume,
		BusinessAddress:       input.BusinessAddress,
		Website:               input.Website,
		ContactName:           strings.TrimSpace(input.ContactName),
		ContactEmail:          strings.TrimSpace(input.ContactEmail),
		ContactPhone:          input.ContactPhone,
		ContactDesignation:    input.ContactDesignation,
		Status:                enums.PartnerStatusDraft,
	}

	created, err := s.repo.Create(ctx, partner, &audit.Entry{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    "partner.create",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create partner")
	}
	return created, nil
}

func (s *service) GetPartner(ctx context.Context, actor Actor, partnerID uuid.UUID) (*Detail, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, partner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this partner")
	}

	steps, err := s.repo.ListApprovalSteps(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approval steps")
	}
	return &Detail{Partner: partner, Steps: steps}, nil
}

func (s *service) ListPartners(ctx context.Context, actor Actor, params ListParams) (*ListResult, error) {
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	for _, status := range params.Statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}

	query := ListQuery{
		Statuses: params.Statuses,
		Limit:    pkgpagination.LimitWithBuffer(params.Limit),
	}
	if actor.Role == enums.ActorRolePartner {
		// Partner users only ever see their own records.
		ownerID := actor.ID
		query.OwnerUserID = &ownerID
	} else if err := RequireCapability(actor, CapabilityViewDirectory); err != nil {
		return nil, err
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partners")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = toListItem(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

var editableStatuses = []enums.PartnerStatus{
	enums.PartnerStatusDraft,
	enums.PartnerStatusMoreInfoNeeded,
}

func (s *service) UpdateProfile(ctx context.Context, actor Actor, partnerID uuid.UUID, input UpdateProfileInput) (*models.Partner, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !Owns(actor, partner) {
		if err := RequireCapability(actor, CapabilityManage); err != nil {
			return nil, err
		}
	}
	if !statusIn(partner.Status, editableStatuses...) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "profile can only be edited in draft or more_info_needed")
	}

	updates := profileUpdates(input)
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updated, err := s.repo.UpdateProfile(ctx, partnerID, partner.Status, updates, s.auditEntry(actor, "partner.update_profile", partner))
	if err != nil {
		return nil, transitionError(err, "update partner profile")
	}
	return updated, nil
}

func (s *service) SendToL1(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !Owns(actor, partner) {
		if err := RequireCapability(actor, CapabilityManage); err != nil {
			return nil, err
		}
	}
	if partner.Status != enums.PartnerStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft applications can be submitted")
	}
	if !hasBasicInfo(partner) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basic company and contact information must be complete before submission")
	}
	if partner.Tier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier must be assigned before submission")
	}

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  enums.PartnerStatusDraft,
		Updates: map[string]any{
			"status":       enums.PartnerStatusPendingL1,
			"submitted_at": now,
		},
		Steps: []models.PartnerApprovalStep{pendingStep(enums.ApprovalLevelL1)},
		Audit: s.auditEntry(actor, "partner.submit", partner),
	})
	if err != nil {
		return nil, transitionError(err, "submit partner")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationSubmitted,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application submitted",
		Message:         fmt.Sprintf("%s entered first-level review.", updated.CompanyName),
	})
	return updated, nil
}

func (s *service) ApproveL1(ctx context.Context, actor Actor, partnerID uuid.UUID, input DecisionInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityApproveL1); err != nil {
		return nil, err
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != enums.PartnerStatusPendingL1 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner is not awaiting first-level review")
	}

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  enums.PartnerStatusPendingL1,
		Updates: map[string]any{
			"status":         enums.PartnerStatusPendingL2,
			"l1_approved_at": now,
			"l1_approved_by": actor.ID,
		},
		Steps: []models.PartnerApprovalStep{
			decidedStep(enums.ApprovalLevelL1, enums.ApprovalStepStatusApproved, actor, input.Comments, nil, now),
			pendingStep(enums.ApprovalLevelL2),
		},
		Audit: s.auditEntry(actor, "partner.l1_approve", partner),
	})
	if err != nil {
		return nil, transitionError(err, "approve partner at l1")
	}
	return updated, nil
}

func (s *service) RejectL1(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityApproveL1); err != nil {
		return nil, err
	}
	return s.reject(ctx, actor, partnerID, input, enums.PartnerStatusPendingL1, enums.ApprovalLevelL1, enums.RejectionLevelL1, "partner.l1_reject")
}

func (s *service) ApproveL2(ctx context.Context, actor Actor, partnerID uuid.UUID, input DecisionInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityApproveL2); err != nil {
		return nil, err
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != enums.PartnerStatusPendingL2 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner is not awaiting second-level review")
	}

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  enums.PartnerStatusPendingL2,
		Updates: map[string]any{
			"status":         enums.PartnerStatusApproved,
			"l2_approved_at": now,
			"l2_approved_by": actor.ID,
			"approved_at":    now,
		},
		Steps: []models.PartnerApprovalStep{
			decidedStep(enums.ApprovalLevelL2, enums.ApprovalStepStatusApproved, actor, input.Comments, nil, now),
		},
		Audit:         s.auditEntry(actor, "partner.l2_approve", partner),
		ActivateOwner: true,
	})
	if err != nil {
		return nil, transitionError(err, "approve partner at l2")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationApproved,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application approved",
		Message:         fmt.Sprintf("%s is now an approved partner.", updated.CompanyName),
	})
	return updated, nil
}

func (s *service) RejectL2(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityApproveL2); err != nil {
		return nil, err
	}
	return s.reject(ctx, actor, partnerID, input, enums.PartnerStatusPendingL2, enums.ApprovalLevelL2, enums.RejectionLevelL2, "partner.l2_reject")
}

var holdableStatuses = []enums.PartnerStatus{
	enums.PartnerStatusDraft,
	enums.PartnerStatusPendingL1,
	enums.PartnerStatusPendingL2,
}

func (s *service) PutOnHold(ctx context.Context, actor Actor, partnerID uuid.UUID, input HoldInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityManage); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hold reason is required")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !statusIn(partner.Status, holdableStatuses...) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner cannot be put on hold from its current status")
	}

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  partner.Status,
		Updates: map[string]any{
			"status":             enums.PartnerStatusOnHold,
			"hold_reason":        strings.TrimSpace(input.Reason),
			"held_by":            actor.ID,
			"held_at":            now,
			"status_before_hold": partner.Status,
		},
		Audit: s.auditEntry(actor, "partner.hold", partner),
	})
	if err != nil {
		return nil, transitionError(err, "put partner on hold")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationOnHold,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application on hold",
		Message:         fmt.Sprintf("%s was placed on hold.", updated.CompanyName),
	})
	return updated, nil
}

func (s *service) Resume(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityManage); err != nil {
		return nil, err
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != enums.PartnerStatusOnHold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner is not on hold")
	}
	if partner.StatusBeforeHold == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "held partner has no recorded prior status")
	}

	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  enums.PartnerStatusOnHold,
		Updates: map[string]any{
			"status":             *partner.StatusBeforeHold,
			"hold_reason":        nil,
			"held_by":            nil,
			"held_at":            nil,
			"status_before_hold": nil,
		},
		Audit: s.auditEntry(actor, "partner.resume", partner),
	})
	if err != nil {
		return nil, transitionError(err, "resume partner")
	}
	return updated, nil
}

var reviewStatuses = []enums.PartnerStatus{
	enums.PartnerStatusPendingL1,
	enums.PartnerStatusPendingL2,
}

func (s *service) SendBack(ctx context.Context, actor Actor, partnerID uuid.UUID, input SendBackInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityManage); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback message is required")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !statusIn(partner.Status, reviewStatuses...) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only applications under review can be sent back")
	}
	// There is no partner-side user to correct anything on staff-created records.
	if partner.CreatedByRole != enums.ActorRolePartner {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only partner-submitted applications can be sent back for correction")
	}

	message := strings.TrimSpace(input.Message)
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  partner.Status,
		Updates: map[string]any{
			"status":           enums.PartnerStatusMoreInfoNeeded,
			"feedback_message": message,
		},
		Notes: []models.PartnerNote{{
			Note:          message,
			Visibility:    enums.NoteVisibilityPartnerVisible,
			CreatedBy:     actor.ID,
			CreatedByName: actor.Name,
		}},
		Audit: s.auditEntry(actor, "partner.send_back", partner),
	})
	if err != nil {
		return nil, transitionError(err, "send partner back")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeInfoRequested,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "More information needed",
		Message:         message,
	})
	return updated, nil
}

var permanentlyRejectableStatuses = []enums.PartnerStatus{
	enums.PartnerStatusPendingL1,
	enums.PartnerStatusPendingL2,
	enums.PartnerStatusOnHold,
	enums.PartnerStatusMoreInfoNeeded,
	enums.PartnerStatusRejected,
}

func (s *service) RejectPermanently(ctx context.Context, actor Actor, partnerID uuid.UUID, input RejectInput) (*models.Partner, error) {
	if err := RequireCapability(actor, CapabilityManage); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.PermanentlyRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner is already permanently rejected")
	}
	if !statusIn(partner.Status, permanentlyRejectableStatuses...) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner cannot be permanently rejected from its current status")
	}

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  partner.Status,
		// rejection_count tracks level rejections only; closing the file is not one.
		Updates: map[string]any{
			"status":               enums.PartnerStatusRejected,
			"rejection_reason":     strings.TrimSpace(input.Reason),
			"rejected_level":       enums.RejectionLevelFinal,
			"rejected_by":          actor.ID,
			"rejected_by_name":     actor.Name,
			"rejected_at":          now,
			"permanently_rejected": true,
		},
		Audit:           s.auditEntry(actor, "partner.reject_permanently", partner),
		DeactivateOwner: true,
	})
	if err != nil {
		return nil, transitionError(err, "permanently reject partner")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationRejected,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application closed",
		Message:         fmt.Sprintf("%s was permanently rejected.", updated.CompanyName),
	})
	return updated, nil
}

func (s *service) Resubmit(ctx context.Context, actor Actor, partnerID uuid.UUID) (*models.Partner, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !Owns(actor, partner) {
		if err := RequireCapability(actor, CapabilityManage); err != nil {
			return nil, err
		}
	}
	if partner.PermanentlyRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "permanently rejected partners cannot resubmit")
	}
	if partner.Status != enums.PartnerStatusRejected && partner.Status != enums.PartnerStatusMoreInfoNeeded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only rejected or sent-back applications can be resubmitted")
	}
	// Re-entry into review carries the same tier gate as first submission.
	if partner.Tier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier must be assigned before resubmission")
	}

	now := s.now().UTC()
	updates := map[string]any{
		"status":             enums.PartnerStatusPendingL1,
		"submitted_at":       now,
		"feedback_message":   nil,
		"resubmission_count": partner.ResubmissionCount + 1,
		// Review restarts from the first level.
		"l1_approved_at": nil,
		"l1_approved_by": nil,
		"l2_approved_at": nil,
		"l2_approved_by": nil,
	}
	if partner.Status == enums.PartnerStatusRejected {
		updates["previous_rejection_reason"] = partner.RejectionReason
		updates["previous_rejected_level"] = partner.RejectedLevel
		updates["rejection_reason"] = nil
		updates["rejected_level"] = nil
		updates["rejected_by"] = nil
		updates["rejected_by_name"] = nil
		updates["rejected_at"] = nil
	}

	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  partner.Status,
		Updates:   updates,
		Steps:     []models.PartnerApprovalStep{pendingStep(enums.ApprovalLevelL1)},
		Audit:     s.auditEntry(actor, "partner.resubmit", partner),
	})
	if err != nil {
		return nil, transitionError(err, "resubmit partner")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationSubmitted,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application resubmitted",
		Message:         fmt.Sprintf("%s re-entered first-level review.", updated.CompanyName),
	})
	return updated, nil
}

func (s *service) reject(
	ctx context.Context,
	actor Actor,
	partnerID uuid.UUID,
	input RejectInput,
	expected enums.PartnerStatus,
	level enums.ApprovalLevel,
	rejectionLevel enums.RejectionLevel,
	action string,
) (*models.Partner, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != expected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner is not awaiting this review level")
	}

	reason := strings.TrimSpace(input.Reason)
	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, TransitionInput{
		PartnerID: partnerID,
		Expected:  expected,
		Updates: map[string]any{
			"status":           enums.PartnerStatusRejected,
			"rejection_reason": reason,
			"rejected_level":   rejectionLevel,
			"rejected_by":      actor.ID,
			"rejected_by_name": actor.Name,
			"rejected_at":      now,
			"rejection_count":  partner.RejectionCount + 1,
		},
		Steps: []models.PartnerApprovalStep{
			decidedStep(level, enums.ApprovalStepStatusRejected, actor, input.Comments, &reason, now),
		},
		Audit: s.auditEntry(actor, action, partner),
	})
	if err != nil {
		return nil, transitionError(err, "reject partner")
	}

	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeApplicationRejected,
		PartnerID:       partnerID,
		RecipientUserID: updated.OwnerUserID,
		Title:           "Application rejected",
		Message:         reason,
	})
	return updated, nil
}

func (s *service) loadPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	partner, err := s.repo.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup partner")
	}
	return partner, nil
}

func (s *service) auditEntry(actor Actor, action string, before *models.Partner) *audit.Entry {
	return &audit.Entry{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    action,
		Before:    Snapshot(before),
	}
}

func transitionError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	if errors.Is(err, ErrStatusChanged) {
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

func pendingStep(level enums.ApprovalLevel) models.PartnerApprovalStep {
	return models.PartnerApprovalStep{
		Level:  level,
		Status: enums.ApprovalStepStatusPending,
	}
}

func decidedStep(level enums.ApprovalLevel, status enums.ApprovalStepStatus, actor Actor, comments *string, reason *string, decidedAt time.Time) models.PartnerApprovalStep {
	approverID := actor.ID
	approverName := actor.Name
	return models.PartnerApprovalStep{
		Level:           level,
		Status:          status,
		ApproverID:      &approverID,
		ApproverName:    &approverName,
		Comments:        comments,
		RejectionReason: reason,
		DecidedAt:       &decidedAt,
	}
}
