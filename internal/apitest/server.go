// Package apitest runs the full REST API in-process for client tests.
package apitest

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/favcart/internal/cache"
	"github.com/Skotchmaster/favcart/internal/httpserver"
	"github.com/Skotchmaster/favcart/internal/imagestore"
	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/middleware/csrf"
	"github.com/Skotchmaster/favcart/internal/mykafka"
	"github.com/Skotchmaster/favcart/internal/repo"
	"github.com/Skotchmaster/favcart/internal/service"
	"github.com/Skotchmaster/favcart/internal/testutil"
	"github.com/Skotchmaster/favcart/internal/tokens"
)

// NewServer starts the router on a private SQLite database with CSRF
// enforced and returns the API root URL. The server stops when t ends.
func NewServer(t *testing.T) string {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := &repo.GormRepo{DB: gdb}
	iss := tokens.NewIssuer([]byte("apitest-access"), []byte("apitest-refresh"), 0, 0)
	images := imagestore.New(nil)
	authSvc := &service.AuthService{Repo: r, Tokens: iss, Images: images, Products: cache.Nop{}}
	pub := mykafka.Nop{}

	cfg := csrf.DefaultConfig()
	cfg.SkipPaths = httpserver.CSRFSkipPaths()

	e := httpserver.NewEcho(logging.NewWithWriter(io.Discard, "error"), httpserver.Options{})
	httpserver.Register(e, &httpserver.Deps{
		DB: gdb,
		Auth: &httpserver.AuthHTTP{
			Svc:       authSvc,
			Favorites: &service.FavoritesService{Repo: r},
			Producer:  pub,
		},
		Catalog: &httpserver.CatalogHTTP{
			Svc:      &service.CatalogService{Repo: r, Cache: cache.Nop{}, Images: images},
			Producer: pub,
		},
		Cart: &httpserver.CartHTTP{
			Svc:      &service.CartService{Repo: r},
			Producer: pub,
		},
		RequireAuth: httpserver.NewRequireAuth(iss.AccessSecret, authSvc, false),
		CSRF:        &cfg,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}
