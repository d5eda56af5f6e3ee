package partners

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

func setupPartnersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	partners := `
CREATE TABLE IF NOT EXISTS partners (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT,
  created_by TEXT NOT NULL,
  created_by_role TEXT NOT NULL,
  company_name TEXT NOT NULL,
  business_type TEXT NOT NULL,
  tax_id TEXT,
  years_in_business INTEGER,
  employee_count INTEGER,
  expected_monthly_volume NUMERIC,
  business_address TEXT,
  website TEXT,
  contact_name TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  contact_phone TEXT,
  contact_designation TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  tier TEXT,
  tier_assigned_by TEXT,
  onboarding_progress INTEGER NOT NULL DEFAULT 0,
  payout_period TEXT,
  rejection_reason TEXT,
  rejected_level TEXT,
  rejected_by TEXT,
  rejected_by_name TEXT,
  rejected_at DATETIME,
  rejection_count INTEGER NOT NULL DEFAULT 0,
  previous_rejection_reason TEXT,
  previous_rejected_level TEXT,
  resubmission_count INTEGER NOT NULL DEFAULT 0,
  permanently_rejected INTEGER NOT NULL DEFAULT 0,
  hold_reason TEXT,
  held_by TEXT,
  held_at DATETIME,
  status_before_hold TEXT,
  feedback_message TEXT,
  submitted_at DATETIME,
  l1_approved_at DATETIME,
  l1_approved_by TEXT,
  l2_approved_at DATETIME,
  l2_approved_by TEXT,
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	steps := `
CREATE TABLE IF NOT EXISTS partner_approval_steps (
  id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL,
  level INTEGER NOT NULL,
  status TEXT NOT NULL,
  approver_id TEXT,
  approver_name TEXT,
  comments TEXT,
  rejection_reason TEXT,
  decided_at DATETIME,
  created_at DATETIME
);`
	documents := `
CREATE TABLE IF NOT EXISTS partner_documents (
  id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL,
  document_type TEXT NOT NULL,
  document_name TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  file_size INTEGER NOT NULL,
  mime_type TEXT NOT NULL,
  uploaded_by TEXT NOT NULL,
  verified INTEGER NOT NULL DEFAULT 0,
  verified_by TEXT,
  verified_at DATETIME,
  created_at DATETIME
);`
	commissions := `
CREATE TABLE IF NOT EXISTS partner_product_commissions (
  id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  base_commission_rate NUMERIC NOT NULL,
  custom_margin NUMERIC NOT NULL,
  final_rate NUMERIC NOT NULL,
  created_at DATETIME
);`
	auditLogs := `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  actor_id TEXT NOT NULL,
  actor_role TEXT NOT NULL,
  action TEXT NOT NULL,
  resource_type TEXT NOT NULL,
  resource_id TEXT NOT NULL,
  state_before TEXT,
  state_after TEXT,
  created_at DATETIME
);`
	for _, stmt := range []string{users, partners, steps, documents, commissions, auditLogs} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedPartner(t *testing.T, db *gorm.DB, status enums.PartnerStatus) *models.Partner {
	t.Helper()

	owner := uuid.New()
	partner := &models.Partner{
		ID:            uuid.New(),
		OwnerUserID:   &owner,
		CreatedBy:     owner,
		CreatedByRole: enums.ActorRolePartner,
		CompanyName:   "Acme Distribution",
		BusinessType:  "distributor",
		ContactName:   "Rae Chen",
		ContactEmail:  "rae@acme.example",
		Status:        status,
	}
	require.NoError(t, db.Create(partner).Error)
	return partner
}

func seedUser(t *testing.T, db *gorm.DB, id uuid.UUID, active bool) {
	t.Helper()

	user := &models.User{
		ID:           id,
		Email:        id.String() + "@acme.example",
		PasswordHash: "x",
		FullName:     "Rae Chen",
		Role:         enums.ActorRolePartner,
		IsActive:     active,
	}
	require.NoError(t, db.Create(user).Error)
}

func testAuditEntry(actorID uuid.UUID, action string) *audit.Entry {
	return &audit.Entry{
		ActorID:   actorID,
		ActorRole: string(enums.ActorRolePartnerManager),
		Action:    action,
	}
}

func TestRepositoryCreateDerivesInitialProgress(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	actorID := uuid.New()
	partner := &models.Partner{
		ID:            uuid.New(),
		CreatedBy:     actorID,
		CreatedByRole: enums.ActorRolePartnerManager,
		CompanyName:   "Northwind Traders",
		BusinessType:  "reseller",
		ContactName:   "Sam Reyes",
		ContactEmail:  "sam@northwind.example",
		Status:        enums.PartnerStatusDraft,
	}

	created, err := repo.Create(ctx, partner, testAuditEntry(actorID, "partner.create"))
	require.NoError(t, err)
	assert.Equal(t, 10, created.OnboardingProgress)

	trail, err := audit.List(db, audit.ResourceTypePartner, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "partner.create", trail[0].Action)
}

func TestRepositoryTransitionSubmits(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partner := seedPartner(t, db, enums.PartnerStatusDraft)
	now := time.Now().UTC()

	updated, err := repo.Transition(ctx, TransitionInput{
		PartnerID: partner.ID,
		Expected:  enums.PartnerStatusDraft,
		Updates: map[string]any{
			"status":       enums.PartnerStatusPendingL1,
			"submitted_at": now,
		},
		Steps: []models.PartnerApprovalStep{{
			ID:     uuid.New(),
			Level:  enums.ApprovalLevelL1,
			Status: enums.ApprovalStepStatusPending,
		}},
		Audit: testAuditEntry(uuid.New(), "partner.submit"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PartnerStatusPendingL1, updated.Status)
	require.NotNil(t, updated.SubmittedAt)
	// basic info plus submission milestone
	assert.Equal(t, 25, updated.OnboardingProgress)

	steps, err := repo.ListApprovalSteps(ctx, partner.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, partner.ID, steps[0].PartnerID)
	assert.Equal(t, enums.ApprovalLevelL1, steps[0].Level)

	trail, err := audit.List(db, audit.ResourceTypePartner, partner.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.NotEmpty(t, trail[0].StateAfter)
}

func TestRepositoryTransitionFence(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partner := seedPartner(t, db, enums.PartnerStatusPendingL2)

	_, err := repo.Transition(ctx, TransitionInput{
		PartnerID: partner.ID,
		Expected:  enums.PartnerStatusPendingL1,
		Updates:   map[string]any{"status": enums.PartnerStatusPendingL2},
	})
	assert.ErrorIs(t, err, ErrStatusChanged)

	_, err = repo.Transition(ctx, TransitionInput{
		PartnerID: uuid.New(),
		Expected:  enums.PartnerStatusDraft,
		Updates:   map[string]any{"status": enums.PartnerStatusPendingL1},
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryTransitionOwnerActivation(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partner := seedPartner(t, db, enums.PartnerStatusPendingL2)
	seedUser(t, db, *partner.OwnerUserID, false)

	_, err := repo.Transition(ctx, TransitionInput{
		PartnerID:     partner.ID,
		Expected:      enums.PartnerStatusPendingL2,
		Updates:       map[string]any{"status": enums.PartnerStatusApproved},
		ActivateOwner: true,
	})
	require.NoError(t, err)

	var owner models.User
	require.NoError(t, db.First(&owner, "id = ?", *partner.OwnerUserID).Error)
	assert.True(t, owner.IsActive)

	_, err = repo.Transition(ctx, TransitionInput{
		PartnerID:       partner.ID,
		Expected:        enums.PartnerStatusApproved,
		Updates:         map[string]any{"status": enums.PartnerStatusRejected, "permanently_rejected": true},
		DeactivateOwner: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&owner, "id = ?", *partner.OwnerUserID).Error)
	assert.False(t, owner.IsActive)
}

func TestRepositoryRecomputeProgressCountsChildren(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partner := seedPartner(t, db, enums.PartnerStatusDraft)
	for i := 0; i < 2; i++ {
		doc := &models.PartnerDocument{
			ID:           uuid.New(),
			PartnerID:    partner.ID,
			DocumentType: enums.DocumentTypeBusinessLicense,
			DocumentName: "doc",
			StorageKey:   uuid.NewString(),
			FileSize:     128,
			MimeType:     "application/pdf",
			UploadedBy:   uuid.New(),
		}
		require.NoError(t, db.Create(doc).Error)
	}

	require.NoError(t, repo.RecomputeProgress(ctx, partner.ID))

	refreshed, err := repo.FindByID(ctx, partner.ID)
	require.NoError(t, err)
	// basic info plus the two-document milestone
	assert.Equal(t, 30, refreshed.OnboardingProgress)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupPartnersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var pending []*models.Partner
	for i := 0; i < 3; i++ {
		p := seedPartner(t, db, enums.PartnerStatusPendingL1)
		require.NoError(t, db.Model(p).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		pending = append(pending, p)
	}
	seedPartner(t, db, enums.PartnerStatusDraft)

	ownerID := *pending[0].OwnerUserID
	rows, err := repo.List(ctx, ListQuery{
		Statuses:    []enums.PartnerStatus{enums.PartnerStatusPendingL1},
		OwnerUserID: &ownerID,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending[0].ID, rows[0].ID)

	page, err := repo.List(ctx, ListQuery{
		Statuses: []enums.PartnerStatus{enums.PartnerStatusPendingL1},
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt) || page[0].CreatedAt.Equal(page[1].CreatedAt))
}
