// Package testutil はHTTPレベルのテストで共有するセットアップとヘルパーを提供します。
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/internal/handlers"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/routes"
	"task-tracker/internal/services"
	"task-tracker/internal/sessions"
)

// TestSecret はテスト用のセッション署名鍵です。
const TestSecret = "test-secret-that-is-at-least-32-bytes-long"

// TestEnv はメモリ上のストアで組み立てたルーターと、その裏のリポジトリです。
type TestEnv struct {
	Router   *gin.Engine
	Users    *repositories.MemoryUserRepository
	Tasks    *repositories.MemoryTaskRepository
	Sessions *sessions.Manager
}

// TestOptions は差し替えたいストアを指定します。nil のものはメモリ実装を使います。
type TestOptions struct {
	SessionStore sessions.Store
	TaskRepo     repositories.TaskRepository
}

// SetupTestRouter はテスト用のGinルーターとリポジトリをセットアップします。
func SetupTestRouter(t *testing.T) *TestEnv {
	return SetupTestRouterWith(t, TestOptions{})
}

// SetupTestRouterWith はストアを差し替えてルーターをセットアップします。障害時の挙動の確認に使います。
func SetupTestRouterWith(t *testing.T, opts TestOptions) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repositories.NewMemoryUserRepository()
	tasks := repositories.NewMemoryTaskRepository()

	var taskRepo repositories.TaskRepository = tasks
	if opts.TaskRepo != nil {
		taskRepo = opts.TaskRepo
	}
	var store sessions.Store = sessions.NewMemoryStore()
	if opts.SessionStore != nil {
		store = opts.SessionStore
	}

	signer, err := sessions.NewTokenSigner(TestSecret)
	require.NoError(t, err)
	manager := sessions.NewManager(store, signer, time.Hour)

	router, err := routes.SetupRouter(routes.Deps{
		AuthService:    services.NewAuthService(users, services.NewPasswordHasher(bcrypt.MinCost)),
		TaskService:    services.NewTaskService(taskRepo),
		Sessions:       manager,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)

	return &TestEnv{Router: router, Users: users, Tasks: tasks, Sessions: manager}
}

// PostForm はフォームをPOSTし、レスポンスを返します。cookie が nil なら匿名で送ります。
func (e *TestEnv) PostForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Get はGETリクエストを送ります。
func (e *TestEnv) Get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// RegisterUser は /register 経由でユーザーを作成します。
func (e *TestEnv) RegisterUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	w := e.PostForm("/register", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, "登録に失敗しました: %s", w.Body.String())

	user, err := e.Users.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}

// LoginAndGetCookie は /login 経由でログインし、セッションクッキーを返します。
func (e *TestEnv) LoginAndGetCookie(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := e.PostForm("/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, "ログインに失敗しました: %s", w.Body.String())

	cookie := SessionCookie(w)
	require.NotNil(t, cookie, "セッションクッキーがありません")
	return cookie
}

// CreateTestTask は /add 経由でタスクを作り、保存されたタスクを返します。
func (e *TestEnv) CreateTestTask(t *testing.T, cookie *http.Cookie, user *models.User, title string) *models.Task {
	t.Helper()
	w := e.PostForm("/add", url.Values{"title": {title}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code, "タスク作成に失敗しました: %s", w.Body.String())

	tasks, err := e.Tasks.FindByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)
	return tasks[len(tasks)-1]
}

// SessionCookie はレスポンスが設定したセッションクッキーを返します。
func SessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == handlers.SessionCookieName {
			return c
		}
	}
	return nil
}
