package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/channelworks/partnerhub-backend/internal/auth"
	"github.com/channelworks/partnerhub-backend/internal/commission"
	"github.com/channelworks/partnerhub-backend/internal/documents"
	"github.com/channelworks/partnerhub-backend/internal/notes"
	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/internal/products"
	pkgAuth "github.com/channelworks/partnerhub-backend/pkg/auth"
	"github.com/channelworks/partnerhub-backend/pkg/auth/session"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

type stubPartnersService struct{}

func (stubPartnersService) CreatePartner(ctx context.Context, actor partners.Actor, input partners.CreatePartnerInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) GetPartner(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) (*partners.Detail, error) {
	return &partners.Detail{Partner: &models.Partner{}}, nil
}

func (stubPartnersService) ListPartners(ctx context.Context, actor partners.Actor, params partners.ListParams) (*partners.ListResult, error) {
	return &partners.ListResult{}, nil
}

func (stubPartnersService) UpdateProfile(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.UpdateProfileInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) SendToL1(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) ApproveL1(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.DecisionInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) RejectL1(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.RejectInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) ApproveL2(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.DecisionInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) RejectL2(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.RejectInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) PutOnHold(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.HoldInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) Resume(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) SendBack(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.SendBackInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) RejectPermanently(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input partners.RejectInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubPartnersService) Resubmit(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) (*models.Partner, error) {
	return &models.Partner{}, nil
}

type stubDocumentsService struct{}

func (stubDocumentsService) CreateUploadURL(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input documents.UploadURLInput) (*documents.UploadTicket, error) {
	return &documents.UploadTicket{}, nil
}

func (stubDocumentsService) ConfirmUpload(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input documents.ConfirmUploadInput) (*models.PartnerDocument, error) {
	return &models.PartnerDocument{}, nil
}

func (stubDocumentsService) ListDocuments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]documents.DocumentView, error) {
	return nil, nil
}

func (stubDocumentsService) VerifyDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) (*models.PartnerDocument, error) {
	return &models.PartnerDocument{}, nil
}

func (stubDocumentsService) DeleteDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) error {
	return nil
}

type stubCommissionService struct{}

func (stubCommissionService) AssignTier(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, tier enums.PartnerTier) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubCommissionService) AssignProducts(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input commission.AssignProductsInput) (*models.Partner, error) {
	return &models.Partner{}, nil
}

func (stubCommissionService) ListAssignments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerProductCommission, error) {
	return nil, nil
}

type stubProductsService struct{}

func (stubProductsService) CreateProduct(ctx context.Context, actorRole enums.ActorRole, input products.CreateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) ListProducts(ctx context.Context, params products.ListParams) (*products.ListResult, error) {
	return &products.ListResult{}, nil
}

func (stubProductsService) SetEligible(ctx context.Context, actorRole enums.ActorRole, productID uuid.UUID, eligible bool) error {
	return nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubNotesService struct{}

func (stubNotesService) AddNote(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input notes.AddNoteInput) (*models.PartnerNote, error) {
	return &models.PartnerNote{}, nil
}

func (stubNotesService) ListNotes(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]models.PartnerNote, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		stubPinger{},
		stubSessionChecker{},
		prometheus.NewRegistry(),
		Services{
			Auth:          stubAuthService{},
			Register:      stubRegisterService{},
			Partners:      stubPartnersService{},
			Documents:     stubDocumentsService{},
			Commission:    stubCommissionService{},
			Products:      stubProductsService{},
			Notifications: stubNotificationsService{},
			Notes:         stubNotesService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		FullName: "Route Tester",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health live got %d", resp.Code)
	}
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestApproveL1RequiresApproverRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/partners/" + uuid.NewString() + "/approve-l1"

	rep := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{}`))
	rep.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleRep))
	rep.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, rep)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for rep approving got %d", resp.Code)
	}

	approver := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{}`))
	approver.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleL1Approver))
	approver.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, approver)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for l1 approver got %d", resp.Code)
	}
}

func TestApproveL2RejectsL1Approver(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/partners/" + uuid.NewString() + "/approve-l2"

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleL1Approver))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for l1 approver on l2 decision got %d", resp.Code)
	}
}

func TestPartnerCreateRequiresManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"company_name":"Acme","business_type":"reseller","contact_name":"Ada","contact_email":"ada@acme.test"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleL1Approver))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for approver creating partner got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodPost, "/api/v1/partners", strings.NewReader(body))
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRolePartnerManager))
	manager.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for manager creating partner got %d", resp.Code)
	}
}

func TestNotesAddRejectsPartnerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	partnerID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		FullName:  "Partner User",
		Role:      enums.ActorRolePartner,
		PartnerID: &partnerID,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/partners/"+partnerID.String()+"/notes", strings.NewReader(`{"note":"hi","visibility":"internal"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for partner adding note got %d", resp.Code)
	}
}

func TestPartnerRoleWithoutPartnerContextIsRejected(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRolePartner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for partner without partner context got %d", resp.Code)
	}
}

func TestProductsCreateRequiresInternalRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	partnerID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		FullName:  "Partner User",
		Role:      enums.ActorRolePartner,
		PartnerID: &partnerID,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	body := `{"sku":"SKU-1","name":"Widget","category":"hardware"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for partner creating product got %d", resp.Code)
	}
}
