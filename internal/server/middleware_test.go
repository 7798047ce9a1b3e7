package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benpsk/stockview/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFHeaderTokenAccepted(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, inventory.Options{})
	req := httptest.NewRequest(http.MethodPost, "/items/refresh", nil)
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	rec := httptest.NewRecorder()

	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, app.service.Calls("list"))
}

func TestCSRFMismatchRejected(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, inventory.Options{})
	req := httptest.NewRequest(http.MethodPost, "/items/delete", strings.NewReader("id=1&csrf_token=other"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	rec := httptest.NewRecorder()

	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, app.service.Calls("delete"))
}

func TestCSRFCookieIssuedOnceAndRendered(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, inventory.Options{})

	rec := app.get(t, "/", false)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Contains(t, rec.Body.String(), `name="csrf_token" value="`+cookies[0].Value+`"`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again := httptest.NewRecorder()
	app.router.ServeHTTP(again, req)
	assert.Empty(t, again.Result().Cookies())
}

func TestOversizedFormRejected(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, inventory.Options{})
	body := "name=" + strings.Repeat("a", maxFormBytes) + "&price=1&stock=1"
	req := httptest.NewRequest(http.MethodPost, "/items/add", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	rec := httptest.NewRecorder()

	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, app.service.Calls("add"))
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, inventory.Options{})

	rec := app.get(t, "/api/items", false)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestIsSafeMethod(t *testing.T) {
	t.Parallel()

	for _, m := range []string{"GET", "head", " OPTIONS "} {
		assert.True(t, isSafeMethod(m), m)
	}
	for _, m := range []string{"POST", "DELETE", "PUT"} {
		assert.False(t, isSafeMethod(m), m)
	}
}
