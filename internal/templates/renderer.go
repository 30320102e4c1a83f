// Package templates рендерит тексты сообщений админ-чата из встроенных шаблонов.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed files/*.tmpl
var files embed.FS

// Имена шаблонов
const (
	OrderCreated       = "order_created.tmpl"
	OrderStatusChanged = "order_status_changed.tmpl"
	TransactionCreated = "transaction_created.tmpl"
	LowStock           = "low_stock.tmpl"
	Stats              = "stats.tmpl"
	LowStockList       = "low_stock_list.tmpl"
	OrderDetails       = "order_details.tmpl"
	Help               = "help.tmpl"
)

var funcs = template.FuncMap{
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
	"sub":      func(a int64, b int) int64 { return a - int64(b) },
	"money":    func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":     func(t time.Time) string { return t.Format("02.01.2006") },
	"datetime": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
}

// Renderer рендерит шаблоны уведомлений и ответов бота
type Renderer struct {
	logger *zap.Logger
	tmpl   *template.Template
}

// NewRenderer разбирает все встроенные шаблоны
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).Option("missingkey=error").ParseFS(files, "files/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{logger: logger, tmpl: tmpl}, nil
}

// Render выполняет шаблон name с данными data
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
