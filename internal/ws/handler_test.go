package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestCredentialsFromRequest_AllCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: CookieEmployerSession, Value: "e1"})
	req.AddCookie(&http.Cookie{Name: CookieCandidateSession, Value: "c1"})
	req.AddCookie(&http.Cookie{Name: CookieConsultantSession, Value: "s1"})
	req.AddCookie(&http.Cookie{Name: CookieAdminSession, Value: "a1"})
	req.AddCookie(&http.Cookie{Name: "unrelated", Value: "x"})

	creds := credentialsFromRequest(req)
	if creds.EmployerToken != "e1" || creds.CandidateToken != "c1" ||
		creds.ConsultantToken != "s1" || creds.AdminToken != "a1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestCredentialsFromRequest_AbsentCookiesStayEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	creds := credentialsFromRequest(req)
	if creds.EmployerToken != "" || creds.CandidateToken != "" ||
		creds.ConsultantToken != "" || creds.AdminToken != "" {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}
}

func TestHandler_OriginAllowlist(t *testing.T) {
	h := NewHandler(nil, nil, nil, 0, []string{"https://app.example.com"}, zerolog.Nop())

	allowed := httptest.NewRequest(http.MethodGet, "/ws", nil)
	allowed.Header.Set("Origin", "https://app.example.com")
	if !h.upgrader.CheckOrigin(allowed) {
		t.Fatal("allowlisted origin rejected")
	}

	denied := httptest.NewRequest(http.MethodGet, "/ws", nil)
	denied.Header.Set("Origin", "https://evil.example.com")
	if h.upgrader.CheckOrigin(denied) {
		t.Fatal("unknown origin accepted")
	}
}

func TestHandler_EmptyAllowlistAcceptsAnyOrigin(t *testing.T) {
	h := NewHandler(nil, nil, nil, 0, nil, zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	if !h.upgrader.CheckOrigin(req) {
		t.Fatal("permissive default rejected an origin")
	}
}
