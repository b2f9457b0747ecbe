package router

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"birthdaybook/internal/database"
	"birthdaybook/internal/filestorage"
	"birthdaybook/internal/handlers"
	"birthdaybook/internal/models"
	"birthdaybook/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Cfg.SecretKey = "router_test_secret_key_32_chars!!!"
	config.Cfg.CSRFEnabled = true
	os.Exit(m.Run())
}

type noUsers struct{ handlers.UserRepository }

func (noUsers) FindByID(context.Context, uint) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (noUsers) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func newTestRouter(t *testing.T, files filestorage.FileStorageProvider) *gin.Engine {
	t.Helper()
	r, err := SetupRouter(zap.NewNop(), handlers.Deps{Users: noUsers{}, Files: files})
	require.NoError(t, err)
	return r
}

func TestHealthWithoutDatabase(t *testing.T) {
	database.SetDB(nil)
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database ping failed")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestStaticAssets(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/css/main.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, handlers.DefaultImageURL, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocalUploadsAreServed(t *testing.T) {
	dir := t.TempDir()
	local, err := filestorage.NewLocalStorageProvider(dir, filestorage.LocalURLPrefix)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("png"), 0o644))

	r := newTestRouter(t, local)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/pic.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestCSRFProtectsForms(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The CSRF token is missing or invalid.")
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]*)"`)

func TestCSRFTokenFromRenderedForm(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	m := csrfInput.FindStringSubmatch(w.Body.String())
	require.NotNil(t, m, "login form carries a CSRF field")
	token := html.UnescapeString(m[1])
	require.NotEmpty(t, token)

	form := url.Values{"email": {"nobody@x.com"}, "password": {"pw1234"}, "csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "unknown credentials re-render the form")
	assert.NotContains(t, w.Body.String(), "The CSRF token is missing or invalid.")
}

func TestNotFoundRendersWithCSRF(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/account", "/birthdaylist", "/birthdaylist/new", "/record/1/update", "/record/1/delete"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login?next="), path)
	}
}
