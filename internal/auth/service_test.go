package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/channelworks/partnerhub-backend/pkg/auth"
	"github.com/channelworks/partnerhub-backend/pkg/auth/session"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/security"
)

type stubUserRepo struct {
	usersByEmail map[string]*models.User
	findErr      error
	lastLoginID  uuid.UUID
	lastLoginAt  time.Time
	loginErr     error
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	s.lastLoginID = id
	s.lastLoginAt = at
	return nil
}

type stubPartnerLookup struct {
	partner *models.Partner
	err     error
}

func (s *stubPartnerLookup) FindByOwner(_ context.Context, _ uuid.UUID) (*models.Partner, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.partner == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.partner, nil
}

type stubSessionManager struct {
	generated   map[string]string
	rotateErr   error
	newAccessID string
	newRefresh  string
	revoked     []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	if s.generated == nil {
		s.generated = map[string]string{}
	}
	refresh := "refresh-" + accessID
	s.generated[accessID] = refresh
	return refresh, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.generated[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	return s.newAccessID, s.newRefresh, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "partnerhub-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func seedTestUser(t *testing.T, email, password string, role enums.ActorRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
	}
}

func newAuthServiceForTests(t *testing.T, repo *stubUserRepo, lookup *stubPartnerLookup, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		PartnerRepo:    lookup,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	require.NoError(t, err)
	return svc
}

func assertAuthCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected a typed error, got %v", err)
	assert.Equal(t, want, typed.Code())
}

func TestLoginIssuesTokenPair(t *testing.T) {
	user := seedTestUser(t, "manager@example.com", "correct horse", enums.ActorRolePartnerManager)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	sessions := &stubSessionManager{}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    " Manager@Example.com ",
		Password: "correct horse",
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Nil(t, resp.PartnerID)
	require.NotNil(t, resp.User)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, user.ID, repo.lastLoginID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.ActorRolePartnerManager, claims.Role)
	assert.Equal(t, sessions.generated[claims.ID], resp.RefreshToken)
}

func TestLoginEmbedsOwnedPartner(t *testing.T) {
	user := seedTestUser(t, "owner@example.com", "correct horse", enums.ActorRolePartner)
	partner := &models.Partner{ID: uuid.New()}
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{partner: partner}, &stubSessionManager{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})

	require.NoError(t, err)
	require.NotNil(t, resp.PartnerID)
	assert.Equal(t, partner.ID, *resp.PartnerID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.PartnerID)
	assert.Equal(t, partner.ID, *claims.PartnerID)
}

func TestLoginPartnerWithoutApplication(t *testing.T) {
	user := seedTestUser(t, "owner@example.com", "correct horse", enums.ActorRolePartner)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, &stubSessionManager{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})

	require.NoError(t, err)
	assert.Nil(t, resp.PartnerID)
}

func TestLoginWrongPassword(t *testing.T) {
	user := seedTestUser(t, "manager@example.com", "correct horse", enums.ActorRolePartnerManager)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
	assert.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTests(t, &stubUserRepo{}, &stubPartnerLookup{}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	user := seedTestUser(t, "gone@example.com", "correct horse", enums.ActorRolePartner)
	user.IsActive = false
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRotatesSession(t *testing.T) {
	user := seedTestUser(t, "manager@example.com", "correct horse", enums.ActorRolePartnerManager)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	sessions := &stubSessionManager{newAccessID: session.NewAccessID(), newRefresh: "rotated-refresh"}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})

	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, sessions.newAccessID, claims.ID)
}

func TestRefreshRejectsMismatchedToken(t *testing.T) {
	user := seedTestUser(t, "manager@example.com", "correct horse", enums.ActorRolePartnerManager)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	sessions := &stubSessionManager{}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen-or-stale",
	})

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRejectsGarbageAccessToken(t *testing.T) {
	svc := newAuthServiceForTests(t, &stubUserRepo{}, &stubPartnerLookup{}, &stubSessionManager{})

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "irrelevant",
	})

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshSessionStoreFailure(t *testing.T) {
	user := seedTestUser(t, "manager@example.com", "correct horse", enums.ActorRolePartnerManager)
	repo := &stubUserRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	sessions := &stubSessionManager{}
	svc := newAuthServiceForTests(t, repo, &stubPartnerLookup{}, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	require.NoError(t, err)

	sessions.rotateErr = errors.New("redis down")
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})

	assertAuthCode(t, err, pkgerrors.CodeInternal)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newAuthServiceForTests(t, &stubUserRepo{}, &stubPartnerLookup{}, sessions)

	require.NoError(t, svc.Logout(context.Background(), "access-id-1"))
	assert.Equal(t, []string{"access-id-1"}, sessions.revoked)
}

func TestLogoutWithoutSession(t *testing.T) {
	svc := newAuthServiceForTests(t, &stubUserRepo{}, &stubPartnerLookup{}, &stubSessionManager{})

	err := svc.Logout(context.Background(), "  ")

	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}
