package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/cuesheet/internal/show"
)

const (
	// DefaultPassword is seeded when no password hash exists.
	DefaultPassword = "admin"

	// DefaultSessionTTL is how long a session token stays valid.
	DefaultSessionTTL = 30 * 24 * time.Hour

	// SessionKeySize is the length of the HMAC session key in bytes.
	SessionKeySize = 32

	issuer  = "cuesheet"
	subject = "operator"
)

// Page groups.
const (
	PageAdmin    = "admin"
	PageOperator = "operator"
	PageDirector = "director"
	PageCamera   = "camera"
	PageOverview = "overview"
)

// Settings is the settings storage the gate reads and writes.
// *store.Store satisfies it.
type Settings interface {
	Setting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error
}

// Gate checks passwords and session tokens.
type Gate struct {
	settings Settings
	key      []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithSessionTTL sets the session lifetime. Non-positive values are ignored.
func WithSessionTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// NewSessionKey returns SessionKeySize random bytes.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}

// New creates a Gate. key must be at least SessionKeySize bytes.
func New(settings Settings, key []byte, opts ...Option) (*Gate, error) {
	if len(key) < SessionKeySize {
		return nil, fmt.Errorf("session key must be at least %d bytes, got %d", SessionKeySize, len(key))
	}
	g := &Gate{
		settings: settings,
		key:      key,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// EnsureDefaultPassword seeds DefaultPassword when no hash is stored.
// It reports whether it did.
func (g *Gate) EnsureDefaultPassword(ctx context.Context) (bool, error) {
	_, ok, err := g.settings.Setting(ctx, show.SettingPasswordHash)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := g.setPassword(ctx, DefaultPassword); err != nil {
		return false, err
	}
	g.logger.Warn("seeded default password; change it before the show")
	return true, nil
}

// CheckPassword returns UNAUTHORIZED unless password matches the stored hash.
func (g *Gate) CheckPassword(ctx context.Context, password string) error {
	hash, ok, err := g.settings.Setting(ctx, show.SettingPasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return show.Unauthorized("no password configured")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return show.Unauthorized("incorrect password")
	}
	return nil
}

// Login checks password and issues a session token.
func (g *Gate) Login(ctx context.Context, password string) (token string, expires time.Time, err error) {
	if err := g.CheckPassword(ctx, password); err != nil {
		return "", time.Time{}, err
	}
	now := g.now()
	expires = now.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	g.logger.Info("session issued", "expires", expires)
	return token, expires, nil
}

// Verify returns UNAUTHORIZED unless token is a live session signed by this
// gate.
func (g *Gate) Verify(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return show.Unauthorized("authentication required")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return mapJWTError(err)
	}
	return nil
}

// PageLocked reports whether page requires a session. The admin group is
// always locked.
func (g *Gate) PageLocked(ctx context.Context, page string) (bool, error) {
	if page == PageAdmin {
		return true, nil
	}
	v, ok, err := g.settings.Setting(ctx, show.SettingLockPrefix+page)
	if err != nil {
		return false, err
	}
	return ok && strings.EqualFold(strings.TrimSpace(v), "true"), nil
}

// Authorize decides whether a request for page carrying token may proceed.
func (g *Gate) Authorize(ctx context.Context, page, token string) error {
	locked, err := g.PageLocked(ctx, page)
	if err != nil {
		return err
	}
	if !locked {
		return nil
	}
	return g.Verify(token)
}

// ChangePassword replaces the password after checking the current one.
func (g *Gate) ChangePassword(ctx context.Context, current, next string) error {
	if err := g.CheckPassword(ctx, current); err != nil {
		return err
	}
	if strings.TrimSpace(next) == "" {
		return show.Validation("new password is required")
	}
	if err := g.setPassword(ctx, next); err != nil {
		return err
	}
	g.logger.Info("password changed")
	return nil
}

// ResetPassword restores DefaultPassword.
func (g *Gate) ResetPassword(ctx context.Context) error {
	if err := g.setPassword(ctx, DefaultPassword); err != nil {
		return err
	}
	g.logger.Warn("password reset to default")
	return nil
}

func (g *Gate) setPassword(ctx context.Context, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return g.settings.SetSetting(ctx, show.SettingPasswordHash, hash)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return show.Unauthorized("session expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return show.Unauthorized("session signature is invalid")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return show.Unauthorized("session algorithm is invalid")
	}
	return show.Unauthorized("session is invalid")
}
