// Package auth registers accounts and manages the access/refresh token pair
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/toyz/receitas/internal/logging"
	"github.com/toyz/receitas/internal/users"
	"github.com/toyz/receitas/pkg/axon"
)

// BcryptCost is the work factor of stored password hashes
const BcryptCost = 10

const (
	MsgDuplicateLogin   = "Já existe um usuário cadastrado com este email"
	MsgInvalidLogin     = "Credenciais inválidas"
	MsgInvalidRefresh   = "Refresh token inválido ou expirado"
	MsgRefreshMismatch  = "Refresh token inválido ou não corresponde ao token armazenado"
	MsgLogoutSuccessful = "Logout realizado com sucesso"
)

// TokenIssuer signs and verifies the token pair. *tokens.Authenticator implements it.
type TokenIssuer interface {
	Issue(identity axon.Identity) (string, error)
	IssueShortLived(identity axon.Identity) (string, error)
	VerifyRefresh(token string) (*axon.Identity, error)
}

// Session is returned by a successful login
type Session struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	UserID       string    `json:"userId"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email"`
	Role         axon.Role `json:"role"`
}

// TokenPair is returned by a refresh
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements registration, login, refresh and logout
type Service struct {
	users      users.Repository
	tokens     TokenIssuer
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService creates a Service. refreshTTL is how long a stored refresh token stays valid.
func NewService(repo users.Repository, tokens TokenIssuer, refreshTTL time.Duration) *Service {
	return &Service{users: repo, tokens: tokens, refreshTTL: refreshTTL, now: time.Now}
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	_, err := s.users.FindByLogin(ctx, req.Login)
	if err == nil {
		return nil, axon.ErrConflict(MsgDuplicateLogin)
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := users.RoleDefault
	if req.NivelAcesso != "" {
		role = axon.Role(req.NivelAcesso)
	}
	now := s.now().UTC()
	user := &users.User{
		ID:          uuid.NewString(),
		Nome:        req.Nome,
		Login:       req.Login,
		Senha:       string(hash),
		NivelAcesso: role,
		CriadoEm:    now,
		AlteradoEm:  now,
	}

	// a concurrent registration may win between the lookup and the insert
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateLogin) {
			return nil, axon.ErrConflict(MsgDuplicateLogin)
		}
		return nil, err
	}

	logging.FromContext(ctx).Infow("user registered", "userId", user.ID, "role", user.NivelAcesso)
	return user, nil
}

// Login checks the credentials and starts a session
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.users.FindByLogin(ctx, req.Login)
	if errors.Is(err, users.ErrNotFound) {
		return nil, axon.ErrUnauthorized(MsgInvalidLogin)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)) != nil {
		logging.FromContext(ctx).Warnw("login rejected", "userId", user.ID)
		return nil, axon.ErrUnauthorized(MsgInvalidLogin)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
		UserID:       user.ID,
		Nome:         user.Nome,
		Email:        user.Login,
		Role:         user.NivelAcesso,
	}, nil
}

// Refresh exchanges the stored refresh token for a new pair
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	identity, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return nil, axon.ErrUnauthorized(MsgInvalidRefresh)
	}

	user, err := s.users.FindByID(ctx, identity.SubjectID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, axon.ErrNotFound(users.MsgNotFound)
	}
	if err != nil {
		return nil, err
	}

	if user.RecoveryToken == nil || *user.RecoveryToken != req.RefreshToken {
		return nil, axon.ErrUnauthorized(MsgRefreshMismatch)
	}
	if user.RecoveryTokenExpires != nil && s.now().After(*user.RecoveryTokenExpires) {
		return nil, axon.ErrUnauthorized(MsgInvalidRefresh)
	}

	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token of userID
func (s *Service) Logout(ctx context.Context, userID string) error {
	err := s.users.ClearRecoveryToken(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return axon.ErrNotFound(users.MsgNotFound)
	}
	return err
}

// issue signs a new pair and stores the refresh token, replacing the previous one
func (s *Service) issue(ctx context.Context, user *users.User) (*TokenPair, error) {
	identity := user.Identity()
	access, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueShortLived(identity)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRecoveryToken(ctx, user.ID, refresh, s.now().UTC().Add(s.refreshTTL)); err != nil {
		return nil, err
	}
	return &TokenPair{Token: access, RefreshToken: refresh}, nil
}
