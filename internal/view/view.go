// Package view renders server-side HTML pages with a shared layout and a
// per-process template cache.
package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diewo77/partner-admin/internal/gate"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/policy"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

// Authz is set once at startup so templates can hide controls the current
// user may not use.
var Authz *policy.AuthGate

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard func map shared by all pages.
func Funcs(r *http.Request) template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
		"mul":  func(a, b float64) float64 { return a * b },
		"can": func(action, resource string) bool {
			if Authz == nil {
				return false
			}
			return Authz.Can(r, gate.Action(action), resource)
		},
		"user": func() *models.User {
			u, _ := policy.PrincipalFrom(r.Context())
			return u
		},
	}
}

// Render parses and executes a page template wrapped in layout.html.
// name is the filename, e.g. "partners.html". Pages that contain a full
// document skip the layout.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}

	devMode := os.Getenv("DEV") == "1"
	funcMap := Funcs(r)
	if !devMode {
		tplCache.RLock()
		cached, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && cached != nil {
			// Rebind request-scoped funcs (can, user) on a clone so cached
			// pages never render with a stale principal.
			t, err := cached.Clone()
			if err != nil {
				return err
			}
			return t.Funcs(funcMap).Execute(w, data)
		}
	}

	mainPath := filepath.Join(baseDir, name)
	contentBytes, _ := os.ReadFile(mainPath)
	useLayout := !bytes.Contains(bytes.ToLower(contentBytes), []byte("<!doctype"))

	var t *template.Template
	if useLayout {
		layoutPath := filepath.Join(baseDir, "layout.html")
		if fi, err := os.Stat(layoutPath); err == nil && !fi.IsDir() {
			parsed, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, mainPath)
			if err != nil {
				return err
			}
			t = parsed
		} else {
			useLayout = false
		}
	}
	if !useLayout {
		parsed, err := template.New(name).Funcs(funcMap).ParseFiles(mainPath)
		if err != nil {
			return err
		}
		t = parsed
	}

	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t.Execute(w, data)
}
