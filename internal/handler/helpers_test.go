package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/store-rating/internal/handler"
	"github.com/msomdec/store-rating/internal/repository/sqlite"
	"github.com/msomdec/store-rating/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testPassword  = "Passw0rd!"
	adminEmail    = "admin@example.com"
)

type testApp struct {
	srv  *httptest.Server
	auth *service.AuthService
	db   *sqlite.DB
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), testJWTSecret, time.Hour, 4)
	_, err = auth.EnsureAdmin(context.Background(), service.NewUser{
		Name:     "Platform Administrator Account",
		Email:    adminEmail,
		Password: testPassword,
		Address:  "1 Admin Road",
	})
	require.NoError(t, err)
	return auth, db
}

func newTestApp(t *testing.T, loginBurst int) *testApp {
	t.Helper()
	auth, db := newTestAuthService(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		auth,
		service.NewUserService(db.Users(), db.Stores(), db.Ratings(), 4, 5),
		service.NewStoreService(db.Users(), db.Stores(), db.Ratings()),
		service.NewRatingService(db.Stores(), db.Ratings()),
		service.NewKeyedLimiter(t.Context(), 0, loginBurst),
		false,
	)

	srv := httptest.NewServer(handler.Middleware(mux))
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, auth: auth, db: db}
}

// do sends a JSON request with an optional bearer token and decodes the JSON
// response into out when out is non-nil.
func (a *testApp) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	status := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	}, &out)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// createUser creates an account through the admin API.
func (a *testApp) createUser(t *testing.T, adminToken, email, role string) {
	t.Helper()
	status := a.do(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name":     "Regular Test Account Holder",
		"email":    email,
		"password": testPassword,
		"address":  "22 Test Lane",
		"role":     role,
	}, nil)
	require.Equal(t, http.StatusCreated, status)
}
