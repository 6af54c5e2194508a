package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"concertlog/internal/store"
	"concertlog/internal/validator"
)

var (
	// ErrUnauthorized indicates a missing, invalid or expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidUser indicates registration input failed validation.
	ErrInvalidUser = errors.New("invalid user")
)

const issuer = "concertlog"

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, email, password string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (store.User, error)
	GetUser(ctx context.Context, id string) (store.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      store.User `json:"user"`
}

// Config controls token signing.
type Config struct {
	Secret      []byte
	TTL         time.Duration
	RememberTTL time.Duration // used when the caller asks to stay signed in
}

// Service exposes user-related workflows.
type Service interface {
	Register(ctx context.Context, email, password string) (store.User, error)
	Login(ctx context.Context, email, password string, remember bool) (Session, error)
	CurrentUser(ctx context.Context, token string) (store.User, error)
}

type service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// New wires a Service backed by the provided Store.
func New(store Store, cfg Config) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.RememberTTL < cfg.TTL {
		cfg.RememberTTL = cfg.TTL
	}
	return &service{store: store, cfg: cfg, now: time.Now}
}

func (s *service) Register(ctx context.Context, email, password string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}

	v := validator.New()
	email = strings.TrimSpace(email)
	v.Check(email != "", "email", "must be provided")
	v.Check(email == "" || validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(len(password) >= 8, "password", "must be at least 8 characters")
	if err := v.Err(); err != nil {
		return store.User{}, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	return s.store.CreateUser(ctx, email, password)
}

func (s *service) Login(ctx context.Context, email, password string, remember bool) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	u, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	now := s.now()
	expires := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{Token: signed, ExpiresAt: expires.UTC().Truncate(time.Second), User: u}, nil
}

func (s *service) CurrentUser(ctx context.Context, token string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if token == "" {
		return store.User{}, ErrUnauthorized
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return store.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	u, err := s.store.GetUser(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return store.User{}, ErrUnauthorized
		}
		return store.User{}, err
	}
	return u, nil
}
