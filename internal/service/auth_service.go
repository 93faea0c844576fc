package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"library-api/internal/core/auth"
	"library-api/internal/core/cache"
	"library-api/internal/domain"
	"library-api/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UsernameFinder is the slice of the user store authentication needs.
type UsernameFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// credential is what gets cached per username; enough to verify and build a principal.
type credential struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"passwordHash"`
	Roles        []string `json:"roles"`
}

type AuthService struct {
	users  UsernameFinder
	hasher utils.PasswordHasher
	cache  *cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

func NewAuthService(users UsernameFinder, hasher utils.PasswordHasher, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, log: l}
}

// WithCache enables the redis credential cache.
func (s *AuthService) WithCache(c *cache.Cache, ttl time.Duration) *AuthService {
	s.cache = c
	s.ttl = ttl
	return s
}

// Authenticate verifies a username/password pair and returns the matching principal.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	cred, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if cred == nil || !s.hasher.Verify(password, cred.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return cred.principal(), nil
}

// Resolve checks a principal recovered from a bearer token against the user
// store. The account must still exist under the same id and password; roles
// are taken from the store, not from the token.
func (s *AuthService) Resolve(ctx context.Context, claimed *auth.Principal) (*auth.Principal, error) {
	if claimed == nil || claimed.Username == "" {
		return nil, ErrInvalidCredentials
	}
	cred, err := s.lookup(ctx, claimed.Username)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.ID != claimed.ID || stamp(cred.PasswordHash) != claimed.Stamp {
		return nil, ErrInvalidCredentials
	}
	return cred.principal(), nil
}

// Forget evicts the cached credential for username.
func (s *AuthService) Forget(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, credentialKey(username)); err != nil {
		s.log.Warn("credential cache evict failed", zap.String("username", username), zap.Error(err))
	}
}

func (s *AuthService) lookup(ctx context.Context, username string) (*credential, error) {
	load := func(ctx context.Context) (*credential, error) {
		u, err := s.users.FindByUsername(ctx, username)
		if err != nil || u == nil {
			return nil, err
		}
		return &credential{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash, Roles: u.RoleNames()}, nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, credentialKey(username), s.ttl, load)
}

func (c *credential) principal() *auth.Principal {
	return &auth.Principal{ID: c.ID, Username: c.Username, Authorities: c.Roles, Stamp: stamp(c.PasswordHash)}
}

// stamp is a short digest of the stored hash; it changes whenever the password does.
func stamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func credentialKey(username string) string { return "cred:" + username }
