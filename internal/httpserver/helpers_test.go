package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/cache"
	"github.com/Skotchmaster/favcart/internal/imagestore"
	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/repo"
	"github.com/Skotchmaster/favcart/internal/service"
	"github.com/Skotchmaster/favcart/internal/testutil"
	"github.com/Skotchmaster/favcart/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	types  []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if m, ok := event.(map[string]any); ok {
		if s, ok := m["type"].(string); ok {
			p.types = append(p.types, s)
		}
	}
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

type testEnv struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	pub    *recordingPublisher
	issuer *tokens.Issuer
}

func newTestEnv(t *testing.T, mods ...func(*Deps)) *testEnv {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := &repo.GormRepo{DB: gdb}
	iss := tokens.NewIssuer([]byte("test-access"), []byte("test-refresh"), time.Minute, time.Hour)
	images := imagestore.New(nil)
	authSvc := &service.AuthService{Repo: r, Tokens: iss, Images: images, Products: cache.Nop{}}
	pub := &recordingPublisher{}

	e := NewEcho(logging.NewWithWriter(io.Discard, "error"), Options{})
	deps := &Deps{
		DB: gdb,
		Auth: &AuthHTTP{
			Svc:       authSvc,
			Favorites: &service.FavoritesService{Repo: r},
			Producer:  pub,
		},
		Catalog: &CatalogHTTP{
			Svc:      &service.CatalogService{Repo: r, Cache: cache.Nop{}, Images: images},
			Producer: pub,
		},
		Cart: &CartHTTP{
			Svc:      &service.CartService{Repo: r},
			Producer: pub,
		},
		RequireAuth: NewRequireAuth(iss.AccessSecret, authSvc, false),
	}
	for _, m := range mods {
		m(deps)
	}
	Register(e, deps)

	return &testEnv{e: e, repo: r, pub: pub, issuer: iss}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its id and session cookies.
func (env *testEnv) signup(t *testing.T, name, email string) (string, []*http.Cookie) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": name, "email": email, "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user struct {
		ID string `json:"_id"`
	}
	decode(t, rec, &user)
	return user.ID, rec.Result().Cookies()
}

func (env *testEnv) addProduct(t *testing.T, cookies []*http.Cookie, name string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/products/addproduct", map[string]any{
		"name": name, "description": "desc", "price": 10, "ratings": 4, "image": "https://img.example.com/x.png",
	}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Product struct {
			ID string `json:"_id"`
		} `json:"product"`
	}
	decode(t, rec, &resp)
	return resp.Product.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m struct {
		Message string `json:"message"`
	}
	decode(t, rec, &m)
	return m.Message
}
