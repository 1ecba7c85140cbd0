package auth

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/internal/apitest"
	"github.com/toyz/receitas/internal/database/dbtest"
	"github.com/toyz/receitas/internal/users"
	tokens "github.com/toyz/receitas/pkg/axon/auth"
)

func newHarness(t *testing.T) *apitest.Harness {
	t.Helper()
	authenticator, err := tokens.New(tokens.Config{Secret: apitest.Secret})
	require.NoError(t, err)

	repo := users.NewSQLRepository(dbtest.New(t).DB)
	return apitest.New(t, NewController(NewService(repo, authenticator, time.Hour)))
}

func TestController_SessionLifecycle(t *testing.T) {
	h := newHarness(t)

	res := h.Do(http.MethodPost, "/api/auth/register", "", `{"nome":"Ana","login":"ana@example.com","senha":"123456"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	assert.Equal(t, "Usuário cadastrado com sucesso", res.Message)
	assert.NotContains(t, res.Object(t), "senha")

	res = h.Do(http.MethodPost, "/api/auth/register", "", `{"nome":"Ana","login":"ana@example.com","senha":"123456"}`)
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, MsgDuplicateLogin, res.Message)

	res = h.Do(http.MethodPost, "/api/auth/login", "", `{"login":"ana@example.com","senha":"123456"}`)
	require.Equal(t, http.StatusOK, res.Code)
	session := res.Object(t)
	for _, key := range []string{"token", "refreshToken", "userId", "nome", "email", "role"} {
		assert.Contains(t, session, key)
	}
	token := session["token"].(string)
	refresh := session["refreshToken"].(string)

	res = h.Do(http.MethodPost, "/api/auth/refresh", "", fmt.Sprintf(`{"refreshToken":%q}`, refresh))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Object(t), 2)

	res = h.Do(http.MethodPost, "/api/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = h.Do(http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, MsgLogoutSuccessful, res.Message)
	assert.Nil(t, res.Data)
}

func TestController_RejectsRefreshTokenAsBearer(t *testing.T) {
	h := newHarness(t)
	h.Do(http.MethodPost, "/api/auth/register", "", `{"nome":"Ana","login":"ana@example.com","senha":"123456"}`)

	res := h.Do(http.MethodPost, "/api/auth/login", "", `{"login":"ana@example.com","senha":"123456"}`)
	require.Equal(t, http.StatusOK, res.Code)

	res = h.Do(http.MethodPost, "/api/auth/logout", res.Object(t)["refreshToken"].(string), "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestController_ValidationMessages(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		target  string
		body    string
		message string
	}{
		{"short name", "/api/auth/register", `{"nome":"A","login":"ana@example.com","senha":"123456"}`, "Nome deve ter pelo menos 2 caracteres"},
		{"bad email", "/api/auth/register", `{"nome":"Ana","login":"ana","senha":"123456"}`, "Login deve ser um email válido"},
		{"short password", "/api/auth/register", `{"nome":"Ana","login":"ana@example.com","senha":"123"}`, "Senha deve ter pelo menos 6 caracteres"},
		{"unknown role", "/api/auth/register", `{"nome":"Ana","login":"ana@example.com","senha":"123456","nivel_acesso":"ROOT"}`, "Nível de acesso deve ser ADMIN ou DEFAULT"},
		{"login without password", "/api/auth/login", `{"login":"ana@example.com"}`, "Senha é obrigatória"},
		{"refresh without token", "/api/auth/refresh", `{}`, "Refresh token é obrigatório"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.Do(http.MethodPost, tt.target, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}
