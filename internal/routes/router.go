// Package routes はルーティングとミドルウェアを提供します。
package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"task-tracker/internal/handlers"
	"task-tracker/internal/services"
	"task-tracker/internal/sessions"
	"task-tracker/internal/web"
)

// Deps はルーターが必要とするサービス群です。
type Deps struct {
	AuthService    *services.AuthService
	TaskService    *services.TaskService
	Sessions       *sessions.Manager
	AllowedOrigins []string
	SecureCookie   bool
	// Ping はストアの疎通確認です。/healthz で使います。
	Ping func(ctx context.Context) error
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(deps Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	// CORS対策
	config := cors.DefaultConfig()
	config.AllowOrigins = deps.AllowedOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour
	r.Use(cors.New(config))

	r.SetHTMLTemplate(tmpl)
	r.Use(SessionLoader(deps.Sessions, deps.SecureCookie))

	// ハンドラー
	pageHandler := handlers.NewPageHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Sessions, deps.SecureCookie)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)

	ping := deps.Ping
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}

	// ルーティング
	r.GET("/healthz", handlers.HealthHandler(ping))
	r.GET("/", pageHandler.Home)
	r.GET("/about", pageHandler.About)
	r.GET("/contact", pageHandler.ShowContact)
	r.POST("/contact", pageHandler.Contact)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	authorized := r.Group("/")
	authorized.Use(RequireLogin())
	{
		authorized.GET("/reset-password", authHandler.ShowResetPassword)
		authorized.POST("/reset-password", authHandler.ResetPassword)
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/add", taskHandler.Add)
		authorized.POST("/toggle/:id", taskHandler.Toggle)
		authorized.GET("/edit/:id", taskHandler.ShowEdit)
		authorized.POST("/edit/:id", taskHandler.Edit)
		authorized.POST("/delete/:id", taskHandler.Delete)
	}

	return r, nil
}
