package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/models"
	"birthdaybook/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "middleware_test_secret_key_32_chars!"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := auth.InitializeJWT(testSecret); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeUsers map[uint]*models.User

func (f fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func newStateRouter(csrfEnabled bool) *gin.Engine {
	r := gin.New()
	r.Use(State(NewStateStore(testSecret, false)))
	r.Use(CSRF(testSecret, csrfEnabled))
	return r
}

// withCookies mimics a browser: a later Set-Cookie with the same name wins.
func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, c := range cookies {
		if _, seen := latest[c.Name]; !seen {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}
	for _, name := range order {
		req.AddCookie(&http.Cookie{Name: name, Value: latest[name].Value})
	}
	return req
}

func TestCSRF(t *testing.T) {
	r := newStateRouter(true)
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, CSRFToken(c)) })
	r.POST("/form", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.NotEmpty(t, token)
	cookies := w.Result().Cookies()

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, withCookies(req, cookies))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CSRFErrorMessage, w.Body.String())
	})

	t.Run("wrong token", func(t *testing.T) {
		w := httptest.NewRecorder()
		form := url.Values{CSRFFieldName: {strings.Repeat("0", len(token))}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, withCookies(req, cookies))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("token without its session", func(t *testing.T) {
		w := httptest.NewRecorder()
		form := url.Values{CSRFFieldName: {token}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CSRFErrorMessage, w.Body.String())
	})

	t.Run("valid form token", func(t *testing.T) {
		w := httptest.NewRecorder()
		form := url.Values{CSRFFieldName: {token}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, withCookies(req, cookies))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid header token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.Header.Set(CSRFHeaderName, token)
		r.ServeHTTP(w, withCookies(req, cookies))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCSRF_Disabled(t *testing.T) {
	r := newStateRouter(false)
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, CSRFToken(c)) })
	r.POST("/form", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String(), "forms still render a token")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/form", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFToken_WithoutMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(State(NewStateStore(testSecret, false)))
	r.GET("/plain", func(c *gin.Context) { c.String(http.StatusOK, CSRFToken(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestFlashes(t *testing.T) {
	r := newStateRouter(false)
	r.GET("/set", func(c *gin.Context) {
		AddFlash(c, FlashSuccess, "first")
		AddFlash(c, FlashDanger, "second")
		c.Redirect(http.StatusFound, "/get")
	})
	r.GET("/get", func(c *gin.Context) {
		c.JSON(http.StatusOK, Flashes(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	require.Equal(t, http.StatusFound, w.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, withCookies(httptest.NewRequest(http.MethodGet, "/get", nil), w.Result().Cookies()))
	require.Equal(t, http.StatusOK, w2.Code)
	assert.JSONEq(t, `[{"Category":"success","Message":"first"},{"Category":"danger","Message":"second"}]`, w2.Body.String())

	// Consumed: the cookie written by /get no longer carries them.
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, withCookies(httptest.NewRequest(http.MethodGet, "/get", nil), w2.Result().Cookies()))
	assert.Equal(t, "null", w3.Body.String())
}

func TestLoadUser(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.Use(LoadUser(fakeUsers{1: alice}))
	r.GET("/whoami", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	call := func(cookieValue string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if cookieValue != "" {
			req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookieValue})
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "anonymous", call("").Body.String())

	token, err := auth.GenerateSessionToken(alice, false, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "alice", call(token).Body.String())

	w := call("garbage")
	assert.Equal(t, "anonymous", w.Body.String())
	require.Len(t, w.Result().Cookies(), 1, "stale cookie is cleared")
	assert.Equal(t, "", w.Result().Cookies()[0].Value)

	ghost, err := auth.GenerateSessionToken(&models.User{ID: 99}, false, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", call(ghost).Body.String())
}

func TestRequireLogin(t *testing.T) {
	r := newStateRouter(false)
	r.GET("/birthdaylist", RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "list") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/birthdaylist?x=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/birthdaylist?x=1"), w.Header().Get("Location"))

	authed := newStateRouter(false)
	authed.Use(func(c *gin.Context) { SetCurrentUser(c, &models.User{ID: 1}) })
	authed.GET("/birthdaylist", RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "list") })

	w = httptest.NewRecorder()
	authed.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/birthdaylist", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Query("as") == "alice" {
			SetCurrentUser(c, &models.User{ID: 1})
		}
	})
	r.GET("/login", RedirectIfAuthenticated(), func(c *gin.Context) { c.String(http.StatusOK, "form") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?as=alice", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGinRecovery(t *testing.T) {
	r := gin.New()
	r.Use(GinRecovery(zap.NewNop(), nil))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/record/:id/update", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	counter := metrics.HTTPRequestCounter.WithLabelValues(http.MethodGet, "/record/:id/update", "403")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/record/7/update", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
