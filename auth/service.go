package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/lifecycle"
	"github.com/oybek/wellness/model"
)

// IdentityCacheTTL bounds how long a resolved token is trusted without
// looking the user up again.
const IdentityCacheTTL = time.Minute

type UserStore interface {
	CreateUser(ctx context.Context, u entity.User) error
	FindUserByEmail(ctx context.Context, email string) (entity.User, error)
	FindUserByID(ctx context.Context, id string) (entity.User, error)
}

// Service registers users, logs them in and resolves bearer tokens to an
// owner id.
type Service struct {
	users      UserStore
	tokens     *Tokens
	identities *ttlcache.Cache[string, string]
	log        zerolog.Logger
}

func NewService(users UserStore, tokens *Tokens, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		identities: ttlcache.New(
			ttlcache.WithTTL[string, string](IdentityCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
		log: log,
	}
}

// StartJanitor evicts expired identities until StopJanitor is called.
func (s *Service) StartJanitor() { s.identities.Start() }

func (s *Service) StopJanitor() { s.identities.Stop() }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, c model.Credentials) (string, entity.User, error) {
	if err := c.ValidateNew(); err != nil {
		return "", entity.User{}, lifecycle.NewError(lifecycle.ErrInvalidInput, err.Error(), err)
	}
	email := normalizeEmail(c.Email)

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return "", entity.User{}, ErrEmailTaken
	case !errors.Is(err, ErrUserNotFound):
		return "", entity.User{}, lifecycle.NewError(lifecycle.ErrStorage, "find user", err)
	}

	hash, err := HashPassword(c.Password)
	if err != nil {
		return "", entity.User{}, err
	}
	user := entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", entity.User{}, ErrEmailTaken
		}
		return "", entity.User{}, lifecycle.NewError(lifecycle.ErrStorage, "create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", entity.User{}, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return token, user, nil
}

func (s *Service) Login(ctx context.Context, c model.Credentials) (string, entity.User, error) {
	if err := c.Validate(); err != nil {
		return "", entity.User{}, lifecycle.NewError(lifecycle.ErrInvalidInput, err.Error(), err)
	}

	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(c.Email))
	if errors.Is(err, ErrUserNotFound) {
		return "", entity.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", entity.User{}, lifecycle.NewError(lifecycle.ErrStorage, "find user", err)
	}

	ok, err := ComparePassword(user.PasswordHash, c.Password)
	if err != nil {
		return "", entity.User{}, err
	}
	if !ok {
		return "", entity.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", entity.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to the id of the user it was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errMissingToken
	}
	if item := s.identities.Get(token); item != nil {
		return item.Value(), nil
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", err
	}

	if _, err := s.users.FindUserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", errUserGone
		}
		return "", lifecycle.NewError(lifecycle.ErrStorage, "find user", err)
	}

	ttl := IdentityCacheTTL
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		s.identities.Set(token, claims.UserID, ttl)
	}
	return claims.UserID, nil
}
