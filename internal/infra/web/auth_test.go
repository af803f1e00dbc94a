//go:build !integration

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthManager_RoundTrip(t *testing.T) {
	a := NewAuthManager("secret", true, "", time.Hour)
	rec := httptest.NewRecorder()
	if _, err := a.Mint(rec, "alice"); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("want 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	claims, err := a.ParseFromRequest(req)
	if err != nil {
		t.Fatalf("ParseFromRequest: %v", err)
	}
	if claims.Username() != "alice" {
		t.Errorf("username = %q", claims.Username())
	}
}

func TestAuthManager_Expired(t *testing.T) {
	a := NewAuthManager("secret", false, "", time.Minute)
	issued := time.Now().Add(-time.Hour)
	a.now = func() time.Time { return issued }
	rec := httptest.NewRecorder()
	if _, err := a.Mint(rec, "alice"); err != nil {
		t.Fatal(err)
	}
	a.now = time.Now

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	if _, err := a.ParseFromRequest(req); err == nil {
		t.Fatal("expired session accepted")
	}
}

func TestAuthManager_ClearAndMissing(t *testing.T) {
	a := NewAuthManager("secret", false, "", time.Hour)
	rec := httptest.NewRecorder()
	a.Clear(rec)
	if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 {
		t.Errorf("Clear should expire the cookie, MaxAge=%d", c.MaxAge)
	}
	if _, err := a.ParseFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); err == nil {
		t.Error("missing cookie accepted")
	}
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
