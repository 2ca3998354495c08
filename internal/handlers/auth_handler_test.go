package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/testutil"
)

func TestRegisterHandler(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	t.Run("成功するとログイン画面へリダイレクト", func(t *testing.T) {
		w := env.PostForm("/register", url.Values{"username": {"alice"}, "password": {"password123"}}, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		user, err := env.Users.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("重複したユーザー名は400", func(t *testing.T) {
		w := env.PostForm("/register", url.Values{"username": {"alice"}, "password": {"another123"}}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Username already exists")
	})

	t.Run("空のフィールドは400", func(t *testing.T) {
		w := env.PostForm("/register", url.Values{"username": {""}, "password": {""}}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Username and password are required")
	})
}

func TestLoginHandler_SetsSessionCookie(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "alice", "password123")

	w := env.PostForm("/login", url.Values{"username": {"alice"}, "password": {"password123"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tasks", w.Header().Get("Location"))

	cookie := testutil.SessionCookie(w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}

func TestLoginHandler_UnifiedFailureMessage(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "alice", "password123")

	unknown := env.PostForm("/login", url.Values{"username": {"nobody"}, "password": {"password123"}}, nil)
	wrong := env.PostForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Contains(t, unknown.Body.String(), "Invalid username or password")
	assert.Contains(t, wrong.Body.String(), "Invalid username or password")
	assert.Nil(t, testutil.SessionCookie(unknown))
	assert.Nil(t, testutil.SessionCookie(wrong))
}

func TestLogoutHandler(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "alice", "password123")
	cookie := env.LoginAndGetCookie(t, "alice", "password123")

	w := env.Get("/tasks", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Get("/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cleared := testutil.SessionCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// 古いクッキーではもう入れない
	w = env.Get("/tasks", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// 2回目のログアウトも同じ結果
	w = env.Get("/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestLogoutHandler_Anonymous(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := env.Get("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestResetPasswordHandler(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "alice", "password123")
	cookie := env.LoginAndGetCookie(t, "alice", "password123")

	t.Run("確認用と一致しなければ変更しない", func(t *testing.T) {
		w := env.PostForm("/reset-password", url.Values{"newPassword": {"newpass456"}, "confirmPassword": {"different"}}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Passwords do not match")

		env.LoginAndGetCookie(t, "alice", "password123")
	})

	t.Run("一致すれば新しいパスワードでログインできる", func(t *testing.T) {
		w := env.PostForm("/reset-password", url.Values{"newPassword": {"newpass456"}, "confirmPassword": {"newpass456"}}, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Password updated")

		env.LoginAndGetCookie(t, "alice", "newpass456")
		old := env.PostForm("/login", url.Values{"username": {"alice"}, "password": {"password123"}}, nil)
		assert.Equal(t, http.StatusUnauthorized, old.Code)
	})

	t.Run("未ログインはログイン画面へ", func(t *testing.T) {
		w := env.PostForm("/reset-password", url.Values{"newPassword": {"x"}, "confirmPassword": {"x"}}, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}
