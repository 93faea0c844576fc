package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;size:32;not null" json:"name"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Name         string    `gorm:"size:128" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Roles        []Role    `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// RoleNames returns the names of the roles attached to u.
func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// UserRepository finders return (nil, nil) when no row matches.
type UserRepository interface {
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	DeleteByID(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]User, error)
	AddRole(ctx context.Context, userID int64, role *Role) error
}

type RoleRepository interface {
	// Ensure returns the role called name, creating it when missing.
	Ensure(ctx context.Context, name string) (*Role, error)
}
