package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/internal/apitest"
	"github.com/toyz/receitas/internal/database/dbtest"
)

func TestController_Routes(t *testing.T) {
	repo := NewSQLRepository(dbtest.New(t).DB)
	user := newUser("ana@example.com")
	require.NoError(t, repo.Save(context.Background(), user))

	h := apitest.New(t, NewController(NewService(repo)))

	t.Run("me requires a token", func(t *testing.T) {
		res := h.Do(http.MethodGet, "/api/users/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("me returns the profile without the password", func(t *testing.T) {
		res := h.Do(http.MethodGet, "/api/users/me", h.Token(user.ID, RoleDefault), "")
		require.Equal(t, http.StatusOK, res.Code)
		data := res.Object(t)
		assert.Equal(t, user.ID, data["id"])
		assert.Equal(t, "DEFAULT", data["nivel_acesso"])
		assert.NotContains(t, data, "senha")
	})

	t.Run("me for a deleted account", func(t *testing.T) {
		res := h.Do(http.MethodGet, "/api/users/me", h.Token(uuid.NewString(), RoleDefault), "")
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, MsgNotFound, res.Message)
	})

	t.Run("lookup by id is admin only", func(t *testing.T) {
		res := h.Do(http.MethodGet, "/api/users/"+user.ID, h.Token(user.ID, RoleDefault), "")
		assert.Equal(t, http.StatusForbidden, res.Code)

		res = h.Do(http.MethodGet, "/api/users/"+user.ID, h.Token("admin", RoleAdmin), "")
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "ana@example.com", res.Object(t)["login"])
	})

	t.Run("lookup rejects a malformed id", func(t *testing.T) {
		res := h.Do(http.MethodGet, "/api/users/42", h.Token("admin", RoleAdmin), "")
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "ID do usuário deve ser um UUID válido", res.Message)
	})
}
