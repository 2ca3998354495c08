package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
	"task-tracker/internal/services"
	"task-tracker/internal/sessions"
)

// SessionCookieName はセッショントークンを載せるクッキー名です。
const SessionCookieName = "task_tracker_session"

// loginFailedMessage は「ユーザーが存在しない」と「パスワード誤り」を区別しない文言です。
const loginFailedMessage = "Invalid username or password"

// AuthHandler は登録・ログイン・ログアウト・パスワード変更を処理します。
type AuthHandler struct {
	authService  *services.AuthService
	sessions     *sessions.Manager
	secureCookie bool
}

// NewAuthHandler は新しいAuthHandlerを作成します。
func NewAuthHandler(authService *services.AuthService, sessionManager *sessions.Manager, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessionManager, secureCookie: secureCookie}
}

// ShowRegister は登録フォームを表示します。
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": models.RegisterRequest{}})
}

// Register はユーザー登録を処理し、成功したらログイン画面へ送ります。
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Error": "Invalid form input", "Form": req})
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			render(c, http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Error": ve.Message, "Form": req})
			return
		}
		RenderServerError(c, err)
		return
	}
	redirect(c, "/login")
}

// ShowLogin はログインフォームを表示します。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": models.LoginRequest{}})
}

// Login はユーザーを認証し、セッションを開始します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"Title": "Log in", "Error": "Invalid form input", "Form": req})
		return
	}

	ctx := c.Request.Context()
	user, err := h.authService.Authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrAuthFailed) {
			logging.Logger.WithField("username", req.Username).Info("Login failed")
			render(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title": "Log in",
				"Error": loginFailedMessage,
				"Form":  models.LoginRequest{Username: req.Username},
			})
			return
		}
		RenderServerError(c, err)
		return
	}

	// ログイン前のセッションは引き継がない
	if old, err := c.Cookie(SessionCookieName); err == nil {
		_ = h.sessions.End(ctx, old)
	}

	_, token, err := h.sessions.Start(ctx, user)
	if err != nil {
		RenderServerError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(h.sessions.TTL().Seconds()))
	redirect(c, "/tasks")
}

// Logout はセッションを破棄します。未ログインでも同じ結果になります。
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.End(c.Request.Context(), token); err != nil {
			logging.Logger.WithError(err).Warn("Failed to end session")
		}
	}
	h.setSessionCookie(c, "", -1)
	redirect(c, "/login")
}

// ShowResetPassword はパスワード変更フォームを表示します。
func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	render(c, http.StatusOK, "reset-password.html", gin.H{"Title": "Reset password"})
}

// ResetPassword はログイン中のユーザーのパスワードを変更します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusBadRequest, "reset-password.html", gin.H{"Title": "Reset password", "Error": "Invalid form input"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), session, req); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			render(c, http.StatusBadRequest, "reset-password.html", gin.H{"Title": "Reset password", "Error": ve.Message})
			return
		}
		RenderServerError(c, err)
		return
	}
	render(c, http.StatusOK, "reset-password.html", gin.H{"Title": "Reset password", "Message": "Password updated"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}

// requireSession はセッションが無ければログイン画面へリダイレクトします。
func requireSession(c *gin.Context) (*models.Session, bool) {
	s := sessions.FromContext(c.Request.Context())
	if s == nil {
		redirect(c, "/login")
		return nil, false
	}
	return s, true
}
