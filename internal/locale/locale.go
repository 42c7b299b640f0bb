// Package locale resolves the request locale and exposes it to handlers.
//
// Two locales are supported: English (the default) and Brazilian
// Portuguese. Resolution order is URL path prefix (/en/..., /pt/...),
// hostname subdomain (pt.example.com), then the Accept-Language header.
package locale

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Locale carries the resolved language and country for a request.
type Locale struct {
	Tag     language.Tag
	Code    string // BCP 47 code sent in X-Locale (en, pt-BR)
	Country string // ISO country sent in X-Country (US, BR)
}

var (
	english    = Locale{Tag: language.English, Code: "en", Country: "US"}
	portuguese = Locale{Tag: language.BrazilianPortuguese, Code: "pt-BR", Country: "BR"}

	matcher = language.NewMatcher([]language.Tag{
		language.English, // first tag is the fallback
		language.BrazilianPortuguese,
	})
)

type contextKey struct{}

// FromContext returns the locale resolved by Middleware.
// Defaults to English when no middleware ran.
func FromContext(ctx context.Context) Locale {
	if loc, ok := ctx.Value(contextKey{}).(Locale); ok {
		return loc
	}
	return english
}

// Middleware resolves the request locale, strips any locale path prefix,
// and stamps X-Locale and X-Country on the request headers so downstream
// handlers and access logs see them.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc, stripped := resolve(r)
		if stripped != "" {
			r.URL.Path = stripped
		}

		r.Header.Set("X-Locale", loc.Code)
		r.Header.Set("X-Country", loc.Country)
		w.Header().Set("Content-Language", loc.Code)

		ctx := context.WithValue(r.Context(), contextKey{}, loc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve picks the locale for a request. Returns the path with the
// locale prefix removed, or "" when the path is unchanged.
func resolve(r *http.Request) (Locale, string) {
	// Path prefix wins: /pt/products -> pt-BR, path becomes /products.
	if prefix, rest := splitLocalePrefix(r.URL.Path); prefix != "" {
		switch prefix {
		case "pt":
			return portuguese, rest
		case "en":
			return english, rest
		}
	}

	// Subdomain: pt.nichehunt.io.
	host := r.Host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if sub, _, ok := strings.Cut(host, "."); ok {
		switch sub {
		case "pt":
			return portuguese, ""
		case "en":
			return english, ""
		}
	}

	// Accept-Language negotiation.
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err == nil && len(tags) > 0 {
		_, index, _ := matcher.Match(tags...)
		if index == 1 {
			return portuguese, ""
		}
	}

	return english, ""
}

// splitLocalePrefix splits "/pt/products" into ("pt", "/products").
// A bare "/pt" maps to ("pt", "/").
func splitLocalePrefix(path string) (prefix, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, remainder, found := strings.Cut(trimmed, "/")
	if seg != "en" && seg != "pt" {
		return "", ""
	}
	if !found || remainder == "" {
		return seg, "/"
	}
	return seg, "/" + remainder
}
