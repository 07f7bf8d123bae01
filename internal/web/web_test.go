package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/config"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := New(calc.New(config.NewHolder(config.Default()), nil))
	require.NoError(t, err)
	return h
}

func submit(t *testing.T, h http.Handler, v url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGet_EmptyForm(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, `id="split-field" class="hidden"`)
	assert.Contains(t, body, `id="rates-field" class="hidden"`)
	assert.NotContains(t, body, `id="result"`)
}

func TestPost_Linear(t *testing.T) {
	rr := submit(t, newHandler(t), url.Values{"machines": {"4"}, "decimals": {"3"}})

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "C1 = 25.000")
	assert.Contains(t, body, "C2 = 33.333")
	assert.Contains(t, body, "C4 = 100.000")
	assert.Contains(t, body, `value="4"`, "submitted values are kept in the form")
}

func TestPost_AsymmetricShowsSplitField(t *testing.T) {
	rr := submit(t, newHandler(t), url.Values{
		"machines":   {"5"},
		"asymmetric": {"on"},
		"split":      {"2"},
	})

	body := rr.Body.String()
	assert.Contains(t, body, "Split valve (C1):")
	assert.Contains(t, body, "C1 = 60")
	assert.NotContains(t, body, `id="split-field" class="hidden"`)
	assert.Contains(t, body, `id="rates-field" class="hidden"`)
}

func TestPost_ValidationError(t *testing.T) {
	rr := submit(t, newHandler(t), url.Values{
		"machines": {"3"},
		"unequal":  {"on"},
		"rates":    {"1, 2"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "expected 3 rates, got 2")
	assert.NotContains(t, body, `id="result"`)
}

func TestPost_EscapesInput(t *testing.T) {
	rr := submit(t, newHandler(t), url.Values{"machines": {`"><script>x</script>`}})
	assert.NotContains(t, rr.Body.String(), "<script>x</script>")
}

func TestMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
