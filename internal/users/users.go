// Package users stores accounts and exposes the profile endpoints
package users

import (
	"context"
	"errors"
	"time"

	"github.com/toyz/receitas/pkg/axon"
)

// Access levels stored in usuarios.nivel_acesso
const (
	RoleAdmin   axon.Role = "ADMIN"
	RoleDefault axon.Role = "DEFAULT"
)

var (
	// ErrNotFound is returned by repositories when no user matches
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateLogin is returned by Save when the login is already taken
	ErrDuplicateLogin = errors.New("users: duplicate login")
)

// MsgNotFound is the message of a missing user
const MsgNotFound = "Usuário não encontrado"

// User is an account. The password hash never leaves the server.
type User struct {
	ID                   string     `json:"id"`
	Nome                 string     `json:"nome"`
	Login                string     `json:"login"`
	Senha                string     `json:"-"`
	NivelAcesso          axon.Role  `json:"nivel_acesso"`
	RecoveryToken        *string    `json:"-"`
	RecoveryTokenExpires *time.Time `json:"-"`
	CriadoEm             time.Time  `json:"criado_em"`
	AlteradoEm           time.Time  `json:"alterado_em"`
}

// IsAdmin reports whether the user has the ADMIN access level
func (u *User) IsAdmin() bool {
	return u.NivelAcesso == RoleAdmin
}

// Identity returns the token identity of the user
func (u *User) Identity() axon.Identity {
	return axon.Identity{SubjectID: u.ID, Email: u.Login, Role: u.NivelAcesso}
}

// Repository persists users
type Repository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	SetRecoveryToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearRecoveryToken(ctx context.Context, id string) error
}
