package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// CSRFCookieName names the double-submit cookie.
const CSRFCookieName = "csrf_token"

// CSRFFormField is the hidden form field carrying the token.
const CSRFFormField = "csrf_token"

// CSRFHeader is the header htmx requests may use instead of the form field.
const CSRFHeader = "X-CSRF-Token"

// CSRF issues a CSRF cookie tied to the session token and verifies that
// modifying requests carry the token in a header or form field.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil {
				WriteError(w, r, http.StatusInternalServerError, "session unavailable")
				return
			}
			token := s.CSRFToken
			if token == "" {
				token = newCSRFToken()
				s.CSRFToken = token
				s.MarkDirty()
			}

			cookie, cookieErr := r.Cookie(CSRFCookieName)
			if cookieErr != nil || cookie.Value != token {
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if !isSafeMethod(r.Method) {
				sent := r.Header.Get(CSRFHeader)
				if sent == "" {
					sent = r.PostFormValue(CSRFFormField)
				}
				if !tokensEqual(sent, token) {
					WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
				if cookieErr != nil || !tokensEqual(cookie.Value, token) {
					WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
