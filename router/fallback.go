package router

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// Fallback serves files from staticDir for GET and HEAD requests when such a
// file exists, and answers 404 {"error":"unknown endpoint"} otherwise.
// An empty staticDir disables file serving.
func Fallback(staticDir string, logger *slog.Logger) http.Handler {
	var files http.Handler
	var root fs.FS
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
		root = os.DirFS(staticDir)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if files != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) && exists(root, r.URL.Path) {
			files.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(struct {
			Error string `json:"error"`
		}{"unknown endpoint"})

		logger.LogAttrs(r.Context(), slog.LevelInfo,
			r.Method+" "+r.URL.Path+" "+r.Proto,
			slog.String("from", r.RemoteAddr),
			slog.String("ua", r.UserAgent()),
			slog.Int("status", http.StatusNotFound),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

// exists reports whether urlPath names a file, or a directory holding an
// index.html, inside root.
func exists(root fs.FS, urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	info, err := fs.Stat(root, name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = fs.Stat(root, path.Join(name, "index.html"))
		return err == nil
	}
	return true
}
