package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-games/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestCookies() *config.Cookies {
	return config.NewTestCookies(config.NewHMACJWT([]byte("secret"), time.Hour))
}

func whoami(w http.ResponseWriter, r *http.Request) {
	claims, ok := PlayerClaims(r.Context())
	if !ok {
		w.Write([]byte("anon"))
		return
	}
	w.Write([]byte(claims.Username))
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("inner"), mw("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthBearer(t *testing.T) {
	cookies := newTestCookies()
	token, err := cookies.JWT().SignPlayer(config.NewPlayerClaims(1, "alice"), time.Now())
	require.NoError(t, err)

	h := Auth(discard, cookies)(http.HandlerFunc(whoami))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "alice", w.Body.String())
}

func TestAuthCookies(t *testing.T) {
	cookies := newTestCookies()
	token, err := cookies.JWT().SignPlayer(config.NewPlayerClaims(1, "alice"), time.Now())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, cookies.Refresh(rec, token))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	Auth(discard, cookies)(http.HandlerFunc(whoami)).ServeHTTP(w, r)
	assert.Equal(t, "alice", w.Body.String())
}

func TestAuthRejectsBadTokens(t *testing.T) {
	cookies := newTestCookies()
	other := config.NewHMACJWT([]byte("other secret"), time.Hour)
	forged, err := other.SignPlayer(config.NewPlayerClaims(1, "alice"), time.Now())
	require.NoError(t, err)
	expired, err := cookies.JWT().SignPlayer(
		config.NewPlayerClaims(1, "alice"), time.Now().Add(-2*time.Hour),
	)
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer " + forged,
		"Bearer " + expired,
		"Bearer ",
		"Basic YWxpY2U6cGFzcw==",
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		Auth(discard, cookies)(http.HandlerFunc(whoami)).ServeHTTP(w, r)
		assert.Equal(t, "anon", w.Body.String(), header)
	}
}

func TestAuthClearsStaleCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth", Value: "garbage"})
	r.AddCookie(&http.Cookie{Name: "sign", Value: "garbage"})
	w := httptest.NewRecorder()
	Auth(discard, newTestCookies())(http.HandlerFunc(whoami)).ServeHTTP(w, r)

	assert.Equal(t, "anon", w.Body.String())
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth()(http.HandlerFunc(whoami))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
}

func TestLoggingRequestID(t *testing.T) {
	var seen string
	h := Logging(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", id)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, id, seen)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "<script>")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.False(t, strings.Contains(seen, "script"))
}

func TestRecover(t *testing.T) {
	h := Recover(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoverAbortHandler(t *testing.T) {
	h := Recover(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCorsOrigins(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Cors(config.Origins{"https://app.example"})(ok)

	for origin, allowed := range map[string]bool{
		"https://app.example":  true,
		"https://evil.example": false,
	} {
		r := httptest.NewRequest(http.MethodOptions, "/game", nil)
		r.Header.Set("Origin", origin)
		r.Header.Set("Access-Control-Request-Method", http.MethodPut)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if allowed {
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/game", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	Cors(nil)(ok).ServeHTTP(w, r)
	assert.Equal(t, "https://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
}
