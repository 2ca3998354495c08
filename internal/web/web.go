// Package web はサーバー側で描画するHTMLテンプレートを埋め込みで提供します。
package web

import (
	"embed"
	"html/template"
	"time"

	"task-tracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates はすべてのページテンプレートを読み込みます。ページ名はファイル名です (例: "tasks.html")。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).ParseFS(templateFS, "templates/*.html")
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(models.DueDateLayout)
}
