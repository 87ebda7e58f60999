package middleware

import (
	"net/http"
)

// LangQueryParam switches language explicitly, e.g. /?hl=en.
const LangQueryParam = "hl"

// LangCookieName remembers an explicit choice for visitors without a session.
const LangCookieName = "hl"

// Languages maps user input onto the loaded translations.
type Languages interface {
	// Normalize returns a supported language for lang, or "".
	Normalize(lang string) string
	// Resolve picks the best supported language for an Accept-Language header.
	Resolve(acceptLang string) string
}

// Locale resolves the request language: ?hl= first, then the session, then the
// hl cookie, then Accept-Language. An explicit ?hl= is persisted.
func Locale(langs Languages, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			lang := langs.Normalize(r.URL.Query().Get(LangQueryParam))
			if lang != "" {
				s.SetLang(lang)
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookieName,
					Value:    lang,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   365 * 24 * 60 * 60,
				})
			}
			if lang == "" && s != nil {
				lang = langs.Normalize(s.Lang)
			}
			if lang == "" {
				if c, err := r.Cookie(LangCookieName); err == nil {
					lang = langs.Normalize(c.Value)
				}
			}
			if lang == "" {
				lang = langs.Resolve(r.Header.Get("Accept-Language"))
			}
			w.Header().Add("Vary", "Accept-Language")
			w.Header().Add("Vary", "Cookie")
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}
