package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

func TestPartnerContextAllowsInternalRolesWithoutPartnerClaim(t *testing.T) {
	for _, role := range []enums.ActorRole{
		enums.ActorRoleAdmin,
		enums.ActorRolePartnerManager,
		enums.ActorRoleL1Approver,
		enums.ActorRoleL2Approver,
		enums.ActorRoleRep,
	} {
		handlerCalled := false
		handler := PartnerContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil)
		ctx := WithUserID(req.Context(), uuid.NewString())
		ctx = WithRole(ctx, string(role))
		resp := httptest.NewRecorder()

		handler.ServeHTTP(resp, req.WithContext(ctx))
		if resp.Code != http.StatusOK || !handlerCalled {
			t.Fatalf("%s: expected pass-through, got %d (called=%v)", role, resp.Code, handlerCalled)
		}
	}
}

func TestPartnerContextRejectsPartnerWithoutPartnerClaim(t *testing.T) {
	handler := PartnerContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil)
	ctx := WithUserID(req.Context(), uuid.NewString())
	ctx = WithRole(ctx, string(enums.ActorRolePartner))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestPartnerContextAllowsPartnerWithPartnerClaim(t *testing.T) {
	handlerCalled := false
	handler := PartnerContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil)
	ctx := WithUserID(req.Context(), uuid.NewString())
	ctx = WithRole(ctx, string(enums.ActorRolePartner))
	ctx = WithPartnerID(ctx, uuid.NewString())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusOK || !handlerCalled {
		t.Fatalf("expected pass-through, got %d (called=%v)", resp.Code, handlerCalled)
	}
}
