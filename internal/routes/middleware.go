package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/handlers"
	"task-tracker/internal/logging"
	"task-tracker/internal/sessions"
)

// SessionLoader はクッキーのトークンからセッションを解決し、リクエストのコンテキストに設定するミドルウェアです。
// 無効なクッキーは削除し、匿名ユーザーとして扱います。セッションストアの障害時は500を返します。
func SessionLoader(manager *sessions.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(handlers.SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		s, err := manager.Resolve(c.Request.Context(), token)
		if errors.Is(err, sessions.ErrSessionNotFound) {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(handlers.SessionCookieName, "", -1, "/", "", secureCookie, true)
			c.Next()
			return
		}
		if err != nil {
			// ストア障害ではクッキーを残し、復旧後もログイン状態を保つ
			handlers.RenderServerError(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(sessions.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireLogin は未ログインのリクエストをログイン画面へリダイレクトします。
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions.FromContext(c.Request.Context()) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger はリクエストごとにメソッド・パス・ステータス・処理時間を記録します。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if s := sessions.FromContext(c.Request.Context()); s != nil {
			fields["user_id"] = s.UserID
		}
		logging.Logger.WithFields(fields).Info("Request handled")
	}
}
