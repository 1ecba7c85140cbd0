package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/toyz/receitas/internal/database"
	"github.com/toyz/receitas/pkg/axon"
)

const selectUser = `
	SELECT id, nome, login, senha, nivel_acesso, recovery_token, recovery_token_expires, criado_em, alterado_em
	FROM usuarios`

// SQLRepository implements Repository over database/sql
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repository on db
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Save inserts a new user
func (r *SQLRepository) Save(ctx context.Context, user *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usuarios (id, nome, login, senha, nivel_acesso, criado_em, alterado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Nome, user.Login, user.Senha, string(user.NivelAcesso), user.CriadoEm, user.AlteradoEm)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID returns the user with id or ErrNotFound
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, selectUser+" WHERE id = ?", id)
}

// FindByLogin returns the user with login or ErrNotFound
func (r *SQLRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	return r.findOne(ctx, selectUser+" WHERE login = ?", login)
}

// SetRecoveryToken stores the current refresh token of a user
func (r *SQLRepository) SetRecoveryToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.updateRecoveryToken(ctx, id, token, expiresAt)
}

// ClearRecoveryToken removes the stored refresh token
func (r *SQLRepository) ClearRecoveryToken(ctx context.Context, id string) error {
	return r.updateRecoveryToken(ctx, id, nil, nil)
}

func (r *SQLRepository) updateRecoveryToken(ctx context.Context, id string, token, expiresAt any) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET recovery_token = ?, recovery_token_expires = ?, alterado_em = ? WHERE id = ?`,
		token, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update recovery token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		user         User
		role         string
		token        sql.NullString
		tokenExpires sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Nome, &user.Login, &user.Senha, &role,
		&token, &tokenExpires, &user.CriadoEm, &user.AlteradoEm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.NivelAcesso = axon.Role(role)
	if token.Valid {
		user.RecoveryToken = &token.String
	}
	if tokenExpires.Valid {
		user.RecoveryTokenExpires = &tokenExpires.Time
	}
	return &user, nil
}
