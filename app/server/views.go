package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/templates"
)

// newEngine loads the embedded views. Creation dates are shown in loc; birth
// dates carry no zone and are printed as stored.
func newEngine(loc *time.Location) *html.Engine {
	engine := html.NewFileSystem(http.FS(templates.FS), ".html")
	engine.AddFuncMap(template.FuncMap{
		"formatPrice": formatPrice,
		"formatDate":  formatDate,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("02/01/2006 15:04")
		},
		"upper": strings.ToUpper,
		"inc":   func(i int) int { return i + 1 },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	})
	return engine
}

// formatPrice groups thousands with dots, the way prices are written in
// Vietnam: 1250000 -> "1.250.000".
func formatPrice(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
