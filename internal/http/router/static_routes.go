package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
)

// RegisterStaticRoutes sirve la SPA desde dir. Rutas que no son archivos
// devuelven index.html para que el router del navegador las resuelva.
func RegisterStaticRoutes(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	h := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		p := path.Clean("/" + req.URL.Path)
		if strings.HasPrefix(p, "/api/") {
			http.NotFound(w, req)
			return
		}
		if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p))); err == nil && !fi.IsDir() {
			fs.ServeHTTP(w, req)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, req, index)
	})

	r.Method(http.MethodGet, "/*", mw.Chain(h,
		mw.WithSecurityHeaders(mw.SPACSP),
		mw.WithLogging(),
	))
}
