package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/toyz/receitas/internal/database/dbtest"
	"github.com/toyz/receitas/internal/users"
	"github.com/toyz/receitas/pkg/axon"
	tokens "github.com/toyz/receitas/pkg/axon/auth"
)

type fixture struct {
	service *Service
	repo    *users.SQLRepository
	tokens  *tokens.Authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	authenticator, err := tokens.New(tokens.Config{Secret: "auth-test", RefreshTTL: time.Hour})
	require.NoError(t, err)

	repo := users.NewSQLRepository(dbtest.New(t).DB)
	return &fixture{
		service: NewService(repo, authenticator, time.Hour),
		repo:    repo,
		tokens:  authenticator,
	}
}

func (f *fixture) register(t *testing.T, login string) *users.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), RegisterRequest{Nome: "Ana", Login: login, Senha: "123456"})
	require.NoError(t, err)
	return user
}

func assertHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	httpErr := axon.AsHttpError(err)
	assert.Equal(t, status, httpErr.StatusCode)
	assert.Equal(t, message, httpErr.Message)
}

func TestService_Register(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ana@example.com")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, users.RoleDefault, user.NivelAcesso)
	assert.NotEqual(t, "123456", user.Senha)

	cost, err := bcrypt.Cost([]byte(user.Senha))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)

	_, err = f.service.Register(context.Background(), RegisterRequest{Nome: "Ana", Login: "ana@example.com", Senha: "abcdef"})
	assertHTTPError(t, err, http.StatusConflict, MsgDuplicateLogin)
}

func TestService_RegisterWithRole(t *testing.T) {
	f := newFixture(t)
	user, err := f.service.Register(context.Background(), RegisterRequest{
		Nome: "Root", Login: "root@example.com", Senha: "123456", NivelAcesso: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, user.NivelAcesso)
}

type racingRepo struct {
	users.Repository
}

func (racingRepo) FindByLogin(context.Context, string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (racingRepo) Save(context.Context, *users.User) error {
	return users.ErrDuplicateLogin
}

func TestService_RegisterLosesRace(t *testing.T) {
	f := newFixture(t)
	service := NewService(racingRepo{}, f.tokens, time.Hour)

	_, err := service.Register(context.Background(), RegisterRequest{Nome: "Ana", Login: "ana@example.com", Senha: "123456"})
	assertHTTPError(t, err, http.StatusConflict, MsgDuplicateLogin)
}

func TestService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "ana@example.com")

	session, err := f.service.Login(ctx, LoginRequest{Login: "ana@example.com", Senha: "123456"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "Ana", session.Nome)
	assert.Equal(t, "ana@example.com", session.Email)
	assert.Equal(t, users.RoleDefault, session.Role)

	identity := f.tokens.Verify("Bearer " + session.Token)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.SubjectID)
	assert.Nil(t, f.tokens.Verify("Bearer "+session.RefreshToken))

	stored, err := f.repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RecoveryToken)
	assert.Equal(t, session.RefreshToken, *stored.RecoveryToken)

	_, err = f.service.Login(ctx, LoginRequest{Login: "ana@example.com", Senha: "wrong-password"})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgInvalidLogin)

	_, err = f.service.Login(ctx, LoginRequest{Login: "nobody@example.com", Senha: "123456"})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgInvalidLogin)
}

func TestService_RefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com")

	session, err := f.service.Login(ctx, LoginRequest{Login: "ana@example.com", Senha: "123456"})
	require.NoError(t, err)

	pair, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, pair.RefreshToken)
	assert.NotNil(t, f.tokens.Verify("Bearer "+pair.Token))

	_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: session.RefreshToken})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgRefreshMismatch)
}

func TestService_RefreshFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: "garbage"})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgInvalidRefresh)

	session := f.register(t, "ana@example.com")
	access, err := f.tokens.Issue(session.Identity())
	require.NoError(t, err)
	_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: access})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgInvalidRefresh)

	ghost, err := f.tokens.IssueShortLived(axon.Identity{SubjectID: "missing", Role: users.RoleDefault})
	require.NoError(t, err)
	_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: ghost})
	assertHTTPError(t, err, http.StatusNotFound, users.MsgNotFound)
}

func TestService_RefreshExpiredStoredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com")

	session, err := f.service.Login(ctx, LoginRequest{Login: "ana@example.com", Senha: "123456"})
	require.NoError(t, err)

	f.service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: session.RefreshToken})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgInvalidRefresh)
}

func TestService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "ana@example.com")

	session, err := f.service.Login(ctx, LoginRequest{Login: "ana@example.com", Senha: "123456"})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, user.ID))
	_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: session.RefreshToken})
	assertHTTPError(t, err, http.StatusUnauthorized, MsgRefreshMismatch)

	assertHTTPError(t, f.service.Logout(ctx, "missing"), http.StatusNotFound, users.MsgNotFound)
}
