package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/handlers"
	"task-tracker/internal/models"
	"task-tracker/internal/sessions"
	"task-tracker/testutil"
)

func TestSessionMiddleware_ValidCookie(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "normal_user", "password123")
	cookie := env.LoginAndGetCookie(t, "normal_user", "password123")

	w := env.Get("/tasks", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Signed in as normal_user")
}

func TestSessionMiddleware_InvalidCookie(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := env.Get("/tasks", &http.Cookie{Name: handlers.SessionCookieName, Value: "invalid.jwt.token"})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cleared := testutil.SessionCookie(w)
	require.NotNil(t, cleared, "不正なクッキーは削除されるべき")
	assert.Empty(t, cleared.Value)
}

func TestSessionMiddleware_UnknownSession(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	signer, err := sessions.NewTokenSigner(testutil.TestSecret)
	require.NoError(t, err)

	// 署名は正しいがストアに存在しないセッション
	token, err := signer.GenerateToken("no-such-session", time.Now().Add(time.Hour))
	require.NoError(t, err)

	w := env.Get("/tasks", &http.Cookie{Name: handlers.SessionCookieName, Value: token})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionMiddleware_NoCookie(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := env.Get("/tasks", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, testutil.SessionCookie(w))
}

func TestSessionMiddleware_PublicPageShowsUser(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	env.RegisterUser(t, "normal_user", "password123")
	cookie := env.LoginAndGetCookie(t, "normal_user", "password123")

	w := env.Get("/about", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "normal_user")

	w = env.Get("/about", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log in")
}

// outageStore は down が立っている間、Get が接続エラーを返すセッションストアです。
type outageStore struct {
	*sessions.MemoryStore
	down atomic.Bool
}

func (s *outageStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if s.down.Load() {
		return nil, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	}
	return s.MemoryStore.Get(ctx, id)
}

func TestSessionMiddleware_StoreOutageKeepsCookie(t *testing.T) {
	store := &outageStore{MemoryStore: sessions.NewMemoryStore()}
	env := testutil.SetupTestRouterWith(t, testutil.TestOptions{SessionStore: store})
	env.RegisterUser(t, "normal_user", "password123")
	cookie := env.LoginAndGetCookie(t, "normal_user", "password123")

	store.down.Store(true)
	w := env.Get("/tasks", cookie)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Empty(t, w.Header().Get("Location"))
	for _, h := range w.Header().Values("Set-Cookie") {
		assert.False(t, strings.HasPrefix(h, handlers.SessionCookieName+"="), "クッキーを消してはいけない: %s", h)
	}

	// 復旧後は同じクッキーでそのまま入れる
	store.down.Store(false)
	w = env.Get("/tasks", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}
