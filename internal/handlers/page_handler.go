package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
)

// PageHandler はログイン不要の静的なページを扱います。
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", gin.H{})
}

func (h *PageHandler) About(c *gin.Context) {
	render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (h *PageHandler) ShowContact(c *gin.Context) {
	render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact", "Form": models.ContactRequest{}})
}

// Contact は問い合わせを受け付けます。保存はせずログに残すだけです。
func (h *PageHandler) Contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusBadRequest, "contact.html", gin.H{
			"Title": "Contact",
			"Error": "Please enter your name and a valid email address",
			"Form":  req,
		})
		return
	}
	logging.Logger.WithField("name", req.Name).WithField("email", req.Email).Info("Contact message received")
	render(c, http.StatusOK, "contact-success.html", gin.H{"Title": "Contact", "Name": req.Name})
}

// HealthHandler はストアの疎通を確認します。
func HealthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			logging.Logger.WithError(err).Error("Store ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Store connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
