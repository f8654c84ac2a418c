package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

const assetsCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

type assetTag struct {
	size    int64
	modTime time.Time
	etag    string
}

// Assets serves files from fsys with long-lived caching headers and a content
// ETag. Requests are expected with the /assets prefix already stripped.
// Directory listings are not served.
//
// ETags are computed on first request and recomputed when a file's size or
// modification time changes, so edits in dev mode are picked up. Conditional
// requests are answered by http.FileServerFS from the ETag header.
func Assets(fsys fs.FS) http.Handler {
	var tags sync.Map // clean path -> assetTag
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		info, err := fs.Stat(fsys, name)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", assetsCacheControl)

		cached, ok := tags.Load(name)
		tag, _ := cached.(assetTag)
		if !ok || tag.size != info.Size() || !tag.modTime.Equal(info.ModTime()) {
			etag, err := contentETag(fsys, name)
			if err == nil {
				tag = assetTag{size: info.Size(), modTime: info.ModTime(), etag: etag}
				tags.Store(name, tag)
			}
		}
		if tag.etag != "" {
			w.Header().Set("ETag", tag.etag)
		}
		files.ServeHTTP(w, r)
	})
}

func contentETag(fsys fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:8]) + `"`, nil
}
