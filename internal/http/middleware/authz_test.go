package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/pkg/auth"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.NewAccessToken(1, "user@example.com", role, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return tok
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestProtectRejectsMissingToken(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {domain.RoleAdmin}})
	h := gate.Protect("GET /x")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectRejectsGarbageToken(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {domain.RoleAdmin}})
	h := gate.Protect("GET /x")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectRejectsWrongRole(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {domain.RoleAdmin}})
	h := gate.Protect("GET /x")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, domain.RoleCustomer))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestProtectAllowsDeclaredRole(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {domain.RoleDistributor, domain.RoleAdmin}})
	h := gate.Protect("GET /x")(okHandler())

	for _, role := range []string{domain.RoleDistributor, domain.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("role %s: status = %d, want 200", role, rec.Code)
		}
	}
}

func TestProtectEmptyRolesAdmitsAnyAuthenticatedUser(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {}})
	h := gate.Protect("GET /x")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, domain.RoleCustomer))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Still authenticated-only.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", rec.Code)
	}
}

func TestProtectAcceptsQueryTokenFallback(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {domain.RoleCustomer}})
	h := gate.Protect("GET /x")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x?token="+mintToken(t, domain.RoleCustomer), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProtectInjectsClaims(t *testing.T) {
	gate := NewGate(testSecret, Table{"GET /x": {}})
	var got *auth.Claims
	h := gate.Protect("GET /x")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, domain.RoleContractor))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Sub != 1 || got.Role != domain.RoleContractor {
		t.Fatalf("claims = %+v, want sub 1 / contractor", got)
	}
}

func TestRouteTablePolicy(t *testing.T) {
	table := RouteTable()

	cases := []struct {
		route string
		role  string
		allow bool
	}{
		{"DELETE /api/partners/delete-partner/{id}", domain.RoleAdmin, true},
		{"DELETE /api/partners/delete-partner/{id}", domain.RoleContractor, false},
		{"POST /api/requests", domain.RoleCustomer, true},
		{"POST /api/requests", domain.RoleContractor, false},
		{"POST /api/requests/{id}/accept", domain.RoleContractor, true},
		{"POST /api/requests/{id}/accept", domain.RoleCustomer, false},
		{"POST /api/materials", domain.RoleDistributor, true},
		{"POST /api/materials", domain.RoleCustomer, false},
		{"GET /api/stats", domain.RoleAdmin, true},
		{"GET /api/stats", domain.RoleDistributor, false},
		{"POST /api/aichat/estimate", domain.RoleCustomer, true},
	}

	for _, tc := range cases {
		required, ok := table[tc.route]
		if !ok {
			t.Fatalf("route %q missing from table", tc.route)
		}
		if got := allowed(tc.role, required); got != tc.allow {
			t.Errorf("%s as %s: allowed = %v, want %v", tc.route, tc.role, got, tc.allow)
		}
	}
}
