package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/testutil"
)

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateTestUser(t, env.db, "Selin")
	hash, err := auth.HashPassword("gizli-sifre")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(user).Update("password_hash", hash).Error)

	t.Run("wrong password", func(t *testing.T) {
		w := env.send(t, http.MethodPost, "/auth/login", map[string]string{"email": user.Email, "password": "yanlis"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, domain.MsgInvalidLogin, envelope(t, w, nil).Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := env.send(t, http.MethodPost, "/auth/login", map[string]string{"email": "kimse@example.com", "password": "gizli-sifre"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, domain.MsgInvalidLogin, envelope(t, w, nil).Message)
	})

	t.Run("success", func(t *testing.T) {
		w := env.send(t, http.MethodPost, "/auth/login", map[string]string{"email": user.Email, "password": "gizli-sifre"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var login domain.LoginResponse
		envelope(t, w, &login)
		require.NotEmpty(t, login.Token)
		assert.Equal(t, user.Email, login.User.Email)
		assert.NotNil(t, login.User.LastLoginAt)

		me := env.send(t, http.MethodGet, "/auth/me", nil, login.Token)
		require.Equal(t, http.StatusOK, me.Code)
		var dto domain.UserDTO
		envelope(t, me, &dto)
		assert.Equal(t, user.ID, dto.ID)
	})
}

func TestAuthHandler_RegisterAndChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.send(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName": "Emre",
		"lastName":  "Kaya",
		"email":     "emre@example.com",
		"password":  "ilk-sifre",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered domain.UserDTO
	envelope(t, w, &registered)
	assert.Equal(t, domain.RoleUser, registered.Role)

	w = env.send(t, http.MethodPost, "/auth/login", map[string]string{"email": "emre@example.com", "password": "ilk-sifre"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login domain.LoginResponse
	envelope(t, w, &login)

	w = env.send(t, http.MethodPost, "/auth/change-password", map[string]string{
		"currentPassword": "ilk-sifre",
		"newPassword":     "ikinci-sifre",
	}, login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.send(t, http.MethodPost, "/auth/login", map[string]string{"email": "emre@example.com", "password": "ikinci-sifre"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.send(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName": "Deniz",
		"lastName":  "Test",
		"email":     env.caller.Email,
		"password":  "bir-sifre",
	}, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.MsgEmailExists, envelope(t, w, nil).Message)
}

func TestAuthHandler_RejectsMissingToken(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.send(t, http.MethodGet, "/companies", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
