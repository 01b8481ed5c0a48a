// Package sessiontoken issues and verifies the signed tokens that carry the
// caller's principal id.
package sessiontoken

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/modelhub/internal/platform/config"
	"github.com/louisbranch/modelhub/internal/platform/httpx"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
)

// CookieName is the session cookie carrying the token.
const CookieName = "modelhub_session"

// EnvPrefix scopes the session settings.
const EnvPrefix = "MODELHUB_SESSION_"

var (
	// ErrDisabled is returned when no signing secret is configured.
	ErrDisabled = errors.New("session tokens are disabled")
	// ErrInvalid is returned for tokens that fail verification.
	ErrInvalid = errors.New("invalid session token")
)

// Config holds session token settings.
type Config struct {
	Secret string        `env:"SECRET"`
	Issuer string        `env:"ISSUER" envDefault:"modelhub"`
	TTL    time.Duration `env:"TTL" envDefault:"12h"`
}

// LoadConfigFromEnv reads MODELHUB_SESSION_* variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnvPrefixed(&cfg, EnvPrefix); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager. An empty secret yields a disabled manager
// under which every caller is anonymous.
func NewManager(cfg Config) *Manager {
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "modelhub"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured.
func (m *Manager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Issue signs a token for principalID.
func (m *Manager) Issue(principalID string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return "", errors.New("principal id is required")
	}
	now := m.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   principalID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the principal id carried by token.
func (m *Manager) Verify(token string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return subject, nil
}

// TokenFromRequest returns the bearer token or session cookie value.
func TokenFromRequest(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return strings.TrimSpace(cookie.Value), true
}

// PrincipalFromRequest verifies the token on r. It returns "" with a nil
// error when r carries no token.
func (m *Manager) PrincipalFromRequest(r *http.Request) (string, error) {
	token, ok := TokenFromRequest(r)
	if !ok || !m.Enabled() {
		return "", nil
	}
	return m.Verify(token)
}

// Middleware stores the verified principal on the request context. Invalid
// tokens are logged and the caller continues unauthenticated.
func (m *Manager) Middleware(logger *log.Logger) httpx.Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.PrincipalFromRequest(r)
			if err != nil {
				logger.Printf("session token rejected path=%s err=%v", r.URL.Path, err)
				principal = ""
			}
			if principal != "" {
				r = r.WithContext(requestctx.WithUserID(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}
