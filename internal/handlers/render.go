// Package handlers はHTMLページとフォーム送信を処理するGinハンドラーを提供します。
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/logging"
	"task-tracker/internal/sessions"
)

// render はログイン中のユーザー名を補ってテンプレートを描画します。
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if s := sessions.FromContext(c.Request.Context()); s != nil {
		data["Username"] = s.Username
	}
	c.HTML(status, name, data)
}

// RenderServerError はストア障害などをログに残し、詳細を出さずにエラーページを返します。
func RenderServerError(c *gin.Context, err error) {
	fields := logrus.Fields{"method": c.Request.Method, "path": c.Request.URL.Path}
	if s := sessions.FromContext(c.Request.Context()); s != nil {
		fields["user_id"] = s.UserID
	}
	logging.Logger.WithError(err).WithFields(fields).Error("Request failed")
	render(c, http.StatusInternalServerError, "error.html", gin.H{"Title": "Error"})
}

// redirect はPOST後のリダイレクトに303を使います。
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

