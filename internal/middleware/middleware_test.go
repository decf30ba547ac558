package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/production-planner/internal/config"
	"github.com/iliyamo/production-planner/internal/utils"
)

const secret = "test-secret"

func serve(t *testing.T, e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, sub, role, 5)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/v1", JWTAuth(secret), RequireRole(RoleOwner, RoleAdmin))
	g.POST("/sync", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})

	rec := serve(t, e, http.MethodPost, "/v1/sync", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, e, http.MethodPost, "/v1/sync", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := utils.NewAccessToken("other-secret", "u1", RoleOwner, 5)
	require.NoError(t, err)
	rec = serve(t, e, http.MethodPost, "/v1/sync", forged.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, e, http.MethodPost, "/v1/sync", token(t, "u1", RoleCrew))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, e, http.MethodPost, "/v1/sync", token(t, "u1", "ADMIN"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", UserID(c))
	c.Set("user_id", "")
	assert.Equal(t, "anon", UserID(c))
	c.Set("user_id", "u-9")
	assert.Equal(t, "u-9", UserID(c))
}

func TestCacheKeyUsesRequestPath(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "callsheet", KeyStrategy: "path_query"}
	ctx := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/shooting-days/:id/call-sheet")
		return c
	}
	k1 := cacheKeyFrom(cfg, ctx("/v1/shooting-days/d1/call-sheet"))
	k2 := cacheKeyFrom(cfg, ctx("/v1/shooting-days/d2/call-sheet"))
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, cacheKeyFrom(cfg, ctx("/v1/shooting-days/d1/call-sheet")))
	assert.Contains(t, k1, "callsheet:")
}

func TestCachedResponseReplay(t *testing.T) {
	bs, err := json.Marshal(cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}, "Content-Length": {"999"}},
		Body:   []byte(`{"ok":true}`),
	})
	require.NoError(t, err)
	hit, ok := decodeCached(bs)
	require.True(t, ok)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, hit.replay(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	_, ok = decodeCached([]byte("garbage"))
	assert.False(t, ok)
	_, ok = decodeCached([]byte(`{"body":"eA=="}`))
	assert.False(t, ok)
}

func TestRecorderOverflow(t *testing.T) {
	rec := &recorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, _ = rec.Write([]byte("abc"))
	assert.False(t, rec.overflow)
	_, _ = rec.Write([]byte("de"))
	assert.True(t, rec.overflow)
	assert.Zero(t, rec.body.Len())
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		PurgeOnWrite(config.CacheConfig{Enabled: true}, nil, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil),
	)
	rec := serve(t, e, http.MethodGet, "/x", "")
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/shots/s1/schedule", nil)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/shots/:id/schedule")
	c.Set("user_id", "u1")

	assert.Equal(t, "rl:user:u1:route:POST /v1/shots/:id/schedule",
		buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}, c))
	assert.Equal(t, "rl:ip:10.0.0.7",
		buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
}

func TestParseBucket(t *testing.T) {
	res, ok := parseBucket([]interface{}{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	assert.False(t, res.allowed)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	res, ok = parseBucket([]interface{}{int64(1), int64(29), int64(0)})
	require.True(t, ok)
	assert.True(t, res.allowed)
	assert.Equal(t, int64(29), res.remaining)

	_, ok = parseBucket([]interface{}{int64(1), "29", int64(0)})
	assert.False(t, ok)
	_, ok = parseBucket("OK")
	assert.False(t, ok)
}
