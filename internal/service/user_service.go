package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"library-api/internal/domain"
	"library-api/pkg/utils"
)

// AccountData is the writable part of a user account. Password is plaintext.
type AccountData struct {
	Username string
	Name     string
	Email    string
	Password string
}

// UserView is the public projection of a user; it never carries the password hash.
type UserView struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ID       int64  `json:"id"`
}

func toUserView(u *domain.User) UserView {
	return UserView{Username: u.Username, Name: u.Name, Email: u.Email, ID: u.ID}
}

// CredentialEvictor drops cached credentials for a username.
type CredentialEvictor interface {
	Forget(ctx context.Context, username string)
}

type UserService struct {
	users  domain.UserRepository
	roles  domain.RoleRepository
	hasher utils.PasswordHasher
	evict  CredentialEvictor
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, roles domain.RoleRepository, hasher utils.PasswordHasher, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, roles: roles, hasher: hasher, log: l}
}

// WithEvictor makes updates and deletes invalidate cached credentials.
func (s *UserService) WithEvictor(e CredentialEvictor) *UserService {
	s.evict = e
	return s
}

// Save creates a user with the USER role.
func (s *UserService) Save(ctx context.Context, in AccountData) (UserView, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}
	role, err := s.roles.Ensure(ctx, domain.RoleUser)
	if err != nil {
		return UserView{}, err
	}
	u := &domain.User{
		Username:     in.Username,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        []domain.Role{*role},
	}
	if err := s.users.Save(ctx, u); err != nil {
		return UserView{}, err
	}
	s.forget(ctx, u.Username)
	s.log.Info("user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return toUserView(u), nil
}

func (s *UserService) DeleteByID(ctx context.Context, id int64) error {
	u, err := s.mustFindUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, u.Username)
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) ShowByID(ctx context.Context, id int64) (UserView, error) {
	u, err := s.mustFindUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(u), nil
}

func (s *UserService) FindAll(ctx context.Context) ([]UserView, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	return out, nil
}

// Update replaces name, email, username and password. There are no partial updates.
func (s *UserService) Update(ctx context.Context, id int64, in AccountData) error {
	u, err := s.mustFindUser(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	oldUsername := u.Username

	u.Name = in.Name
	u.Email = in.Email
	u.Username = in.Username
	u.PasswordHash = hash
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	s.forget(ctx, oldUsername)
	if oldUsername != u.Username {
		s.forget(ctx, u.Username)
	}
	s.log.Info("user updated", zap.Int64("user_id", id))
	return nil
}

// GrantRole attaches the named role to user id, creating the role if needed.
func (s *UserService) GrantRole(ctx context.Context, id int64, roleName string) error {
	u, err := s.mustFindUser(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range u.Roles {
		if r.Name == roleName {
			return nil
		}
	}
	role, err := s.roles.Ensure(ctx, roleName)
	if err != nil {
		return err
	}
	if err := s.users.AddRole(ctx, id, role); err != nil {
		return err
	}
	s.forget(ctx, u.Username)
	return nil
}

func (s *UserService) mustFindUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrElementNotFound)
	}
	return u, nil
}

func (s *UserService) forget(ctx context.Context, username string) {
	if s.evict != nil {
		s.evict.Forget(ctx, username)
	}
}
