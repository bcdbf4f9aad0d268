package httpapi

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/internal/crypto"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/internal/store/memory"
	"github.com/Scott-fo/t3-clone/internal/sync"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testKeyRing(t *testing.T) *crypto.KeyRing {
	t.Helper()
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i)
	}
	kr, err := crypto.NewKeyRing(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return kr
}

func testRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	st := memory.New()
	hub := sse.NewHub()
	entities := sync.NewDefaultRegistry()

	router := NewRouter(Deps{
		Store:   st,
		Hub:     hub,
		Puller:  nil,
		Pusher:  nil,
		KeyRing: testKeyRing(t),
	})
	_ = entities
	return router, st
}

func TestRegisterLoginThenAccessAuthedRoute(t *testing.T) {
	router, _ := testRouter(t)

	body := `{"email":"a@b.com","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "register must set a session cookie")

	req2 := httptest.NewRequest(http.MethodGet, "/api/api-keys", nil)
	req2.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)
}

func TestAuthedRouteWithoutCookieIsRejected(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/api-keys", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router, _ := testRouter(t)
	body := `{"email":"dup@b.com","password":"hunter2"}`

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusConflict, rec2.Code)
}

func TestSharedChatGetIsUnauthenticated(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/shared/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
