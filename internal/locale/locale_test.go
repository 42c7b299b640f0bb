package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// probe records what the downstream handler observed.
type probe struct {
	path    string
	locale  Locale
	xLocale string
	country string
}

func runMiddleware(t *testing.T, target, host, acceptLanguage string) probe {
	t.Helper()

	var got probe
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.locale = FromContext(r.Context())
		got.xLocale = r.Header.Get("X-Locale")
		got.country = r.Header.Get("X-Country")
	}))

	r := httptest.NewRequest(http.MethodGet, target, nil)
	if host != "" {
		r.Host = host
	}
	if acceptLanguage != "" {
		r.Header.Set("Accept-Language", acceptLanguage)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return got
}

func TestMiddleware_PathPrefix(t *testing.T) {
	t.Run("pt prefix resolves and is stripped", func(t *testing.T) {
		got := runMiddleware(t, "/pt/products/acme", "", "")
		assert.Equal(t, "/products/acme", got.path)
		assert.Equal(t, "pt-BR", got.xLocale)
		assert.Equal(t, "BR", got.country)
	})

	t.Run("en prefix resolves and is stripped", func(t *testing.T) {
		got := runMiddleware(t, "/en/products", "", "")
		assert.Equal(t, "/products", got.path)
		assert.Equal(t, "en", got.xLocale)
		assert.Equal(t, "US", got.country)
	})

	t.Run("bare locale prefix becomes root", func(t *testing.T) {
		got := runMiddleware(t, "/pt", "", "")
		assert.Equal(t, "/", got.path)
		assert.Equal(t, "pt-BR", got.xLocale)
	})

	t.Run("non-locale first segment is untouched", func(t *testing.T) {
		got := runMiddleware(t, "/products/acme", "", "")
		assert.Equal(t, "/products/acme", got.path)
		assert.Equal(t, "en", got.xLocale)
	})
}

func TestMiddleware_Subdomain(t *testing.T) {
	got := runMiddleware(t, "/products", "pt.nichehunt.io", "")
	assert.Equal(t, "/products", got.path)
	assert.Equal(t, "pt-BR", got.xLocale)
	assert.Equal(t, "BR", got.country)

	got = runMiddleware(t, "/products", "pt.nichehunt.io:8080", "")
	assert.Equal(t, "pt-BR", got.xLocale)
}

func TestMiddleware_AcceptLanguage(t *testing.T) {
	t.Run("portuguese preference matches pt-BR", func(t *testing.T) {
		got := runMiddleware(t, "/products", "", "pt-BR,pt;q=0.9,en;q=0.5")
		assert.Equal(t, "pt-BR", got.xLocale)
	})

	t.Run("unsupported language falls back to english", func(t *testing.T) {
		got := runMiddleware(t, "/products", "", "de-DE,de;q=0.9")
		assert.Equal(t, "en", got.xLocale)
	})

	t.Run("path prefix beats accept-language", func(t *testing.T) {
		got := runMiddleware(t, "/en/products", "", "pt-BR")
		assert.Equal(t, "en", got.xLocale)
	})
}

func TestFromContext_Default(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	loc := FromContext(r.Context())
	assert.Equal(t, "en", loc.Code)
	assert.Equal(t, "US", loc.Country)
}
