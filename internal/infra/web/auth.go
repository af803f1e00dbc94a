package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"page-summarizer/internal/infra/logging"
)

// ===== Session/JWT primitives =====

const SessionCookieName = "session"

var errNoSession = errors.New("missing session")

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

// AuthManager issues and checks the signed session cookie. The subject is the username.
type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(secret string, secure bool, domain string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{
		cfg: AuthConfig{
			HMACSecret:   []byte(secret),
			CookieName:   SessionCookieName,
			CookieDomain: domain, // "" keeps the cookie host-only
			SecureCookie: secure,
			TTL:          ttl,
		},
		now: time.Now,
	}
}

type SessionClaims struct {
	jwt.RegisteredClaims
}

// Username is the authenticated user the claims belong to.
func (c *SessionClaims) Username() string { return c.Subject }

// Mint signs a session for username and sets it as a cookie on w.
func (a *AuthManager) Mint(w http.ResponseWriter, username string) (string, error) {
	now := a.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, a.cookie(signed, int(a.cfg.TTL.Seconds())))
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, a.cookie("", -1))
}

// Lax so the 303 after login still carries the cookie on the following GET.
func (a *AuthManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	c, err := r.Cookie(a.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, errNoSession
	}
	return a.parse(c.Value)
}

func (a *AuthManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid session")
	}
	return claims, nil
}

type userCtxKey struct{}

// Session resolves the cookie into a username on the request context. It never rejects a request.
func (a *AuthManager) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.ParseFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userCtxKey{}, claims.Username())
		ctx = logging.WithUserID(ctx, claims.Username())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the username stored by Session, or "".
func CurrentUser(ctx context.Context) string {
	u, _ := ctx.Value(userCtxKey{}).(string)
	return u
}
