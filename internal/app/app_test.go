package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/db"
	"github.com/geocoder89/storeratings/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t *testing.T
	r *gin.Engine
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), out), r.Body.String())
}

func (c client) do(method, path, token string, body any, headers ...string) response {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return response{w}
}

func newClient(t *testing.T) client {
	t.Helper()

	mem := memory.NewDB()
	_, err := db.EnsureAdminUser(context.Background(), mem.Users(), db.AdminSeed{
		Email:    "admin@example.com",
		Password: "Admin#pass1",
	})
	require.NoError(t, err)

	r := NewRouter(Options{
		Config: config.Config{
			Env:                "test",
			JWTSecret:          "test-secret",
			AccessTTL:          time.Minute,
			RefreshTTL:         time.Hour,
			CacheTTL:           time.Minute,
			RateLimitPerMinute: 1000,
			MaxBodyBytes:       1 << 20,
		},
		Repos: MemoryRepositories(mem),
	})
	return client{t: t, r: r}
}

type authBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
}

func (c client) register(name, email, role string) authBody {
	c.t.Helper()

	w := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "Secret#123", "role": role,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var out authBody
	w.decode(c.t, &out)
	return out
}

type storeBody struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	OwnerID       string   `json:"ownerId"`
	AverageRating *float64 `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
}

func TestStoreRatingFlow(t *testing.T) {
	c := newClient(t)

	owner := c.register("Olive Owner", "olive@example.com", "store_owner")
	alice := c.register("Alice", "alice@example.com", "")
	bob := c.register("Bob", "bob@example.com", "user")
	assert.Equal(t, "store_owner", owner.User.Role)
	assert.Equal(t, "user", alice.User.Role)

	newStore := map[string]string{"name": "Corner Coffee House Downtown", "email": "coffee@example.com", "address": "1 Main St"}

	w := c.do(http.MethodPost, "/api/stores", alice.AccessToken, newStore)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, "/api/stores", owner.AccessToken, newStore)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s storeBody
	w.decode(t, &s)
	assert.Equal(t, owner.User.ID, s.OwnerID)

	w = c.do(http.MethodPost, "/api/stores", owner.AccessToken, newStore)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, rt := range []struct {
		token string
		value int
	}{{alice.AccessToken, 5}, {bob.AccessToken, 3}, {alice.AccessToken, 1}} {
		w = c.do(http.MethodPost, "/api/ratings", rt.token, map[string]any{"storeId": s.ID, "rating": rt.value})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = c.do(http.MethodGet, "/api/stores/"+s.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got storeBody
	w.decode(t, &got)
	require.NotNil(t, got.AverageRating)
	assert.InDelta(t, 2.0, *got.AverageRating, 1e-9)
	assert.Equal(t, 2, got.TotalRatings)

	w = c.do(http.MethodGet, "/api/ratings/user/"+s.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		ID     string `json:"id"`
		Rating int    `json:"rating"`
	}
	w.decode(t, &mine)
	assert.Equal(t, 1, mine.Rating)

	w = c.do(http.MethodDelete, "/api/ratings/"+mine.ID, bob.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPut, "/api/stores/"+s.ID, bob.AccessToken, map[string]string{"address": "elsewhere"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPut, "/api/stores/"+s.ID, owner.AccessToken, map[string]string{"name": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/api/ratings/store/"+s.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userName":"Alice"`)

	w = c.do(http.MethodDelete, "/api/stores/"+s.ID, owner.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/api/stores/"+s.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreListingETag(t *testing.T) {
	c := newClient(t)
	owner := c.register("Olive Owner", "olive@example.com", "store_owner")

	w := c.do(http.MethodPost, "/api/stores", owner.AccessToken, map[string]string{
		"name": "Corner Coffee House Downtown", "email": "coffee@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodGet, "/api/stores?name=coffee", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = c.do(http.MethodGet, "/api/stores?name=coffee", "", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = c.do(http.MethodGet, "/api/stores?name=bakery", "", nil)
	var list struct {
		Count int `json:"count"`
	}
	w.decode(t, &list)
	assert.Equal(t, 0, list.Count)

	w = c.do(http.MethodGet, "/api/stores/owner", owner.AccessToken, nil)
	w.decode(t, &list)
	assert.Equal(t, 1, list.Count)
}

func TestAuthAndAdminRoutes(t *testing.T) {
	c := newClient(t)
	alice := c.register("Alice", "alice@example.com", "")

	w := c.do(http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"requestId"`)

	w = c.do(http.MethodPut, "/api/profile", alice.AccessToken, map[string]string{"address": "2 Side St"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":"2 Side St"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = c.do(http.MethodGet, "/api/auth/profile", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)

	w = c.do(http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "Secret#123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/api/admin/stats", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "Admin#pass1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admin authBody
	w.decode(t, &admin)

	w = c.do(http.MethodGet, "/api/admin/stats", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d struct {
		TotalUsers int `json:"totalUsers"`
	}
	w.decode(t, &d)
	assert.Equal(t, 2, d.TotalUsers)

	w = c.do(http.MethodGet, "/api/admin/users?role=user", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), alice.User.ID)

	w = c.do(http.MethodDelete, "/api/admin/users/not-a-uuid", admin.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodDelete, "/api/admin/users/"+admin.User.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodDelete, "/api/admin/users/"+alice.User.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRefreshCookieRotation(t *testing.T) {
	c := newClient(t)

	w := c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "Admin#pass1"})
	require.Equal(t, http.StatusOK, w.Code)

	cookie := refreshCookie(t, w)
	assert.Equal(t, "/api/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)

	w = c.do(http.MethodPost, "/api/auth/refresh", "", nil, "Cookie", cookie.Name+"="+cookie.Value)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := refreshCookie(t, w)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// the old token was revoked by rotation
	w = c.do(http.MethodPost, "/api/auth/refresh", "", nil, "Cookie", cookie.Name+"="+cookie.Value)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/logout", "", nil, "Cookie", rotated.Name+"="+rotated.Value)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodPost, "/api/auth/refresh", "", nil, "Cookie", rotated.Name+"="+rotated.Value)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/metrics", "", nil).Code)
}

func refreshCookie(t *testing.T, w response) *http.Cookie {
	t.Helper()

	for _, ck := range w.Result().Cookies() {
		if ck.Name == "refresh_token" && ck.Value != "" {
			return ck
		}
	}
	t.Fatalf("no refresh_token cookie in response: %v", w.Header().Values("Set-Cookie"))
	return nil
}
