package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// templateSet parses every .tmpl under dir. In dev mode it reparses on each
// request so edits show up without a restart.
type templateSet struct {
	dir string
	dev bool

	mu    sync.RWMutex
	cache *template.Template
}

func newTemplateSet(dir string, dev bool) *templateSet {
	return &templateSet{dir: dir, dev: dev}
}

func (s *templateSet) parse() (*template.Template, error) {
	// ParseGlob doesn't support **, so walk the tree.
	var files []string
	if err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", s.dir)
	}
	return template.New("_root").ParseFiles(files...)
}

func (s *templateSet) load() error {
	t, err := s.parse()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = t
	s.mu.Unlock()
	return nil
}

func (s *templateSet) get() (*template.Template, error) {
	if s.dev {
		return s.parse()
	}
	s.mu.RLock()
	t := s.cache
	s.mu.RUnlock()
	if t == nil {
		return nil, fmt.Errorf("templates not initialized")
	}
	return t, nil
}

// render executes name into a buffer first so a failing template never sends
// a partial page.
func (a *app) render(w http.ResponseWriter, name string, data any) {
	t, err := a.templates.get()
	if err != nil {
		a.logger.Error("template parse", zap.Error(err))
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template exec", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
