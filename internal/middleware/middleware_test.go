package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testKey = "0123456789abcdef0123456789abcdef"

func sessionHandler(t *testing.T, seen *SessionData) http.Handler {
	t.Helper()
	return Session(SessionOptions{SigningKey: testKey})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		require.NotNil(t, s)
		*seen = *s
		_, _ = w.Write([]byte("ok"))
	}))
}

func cookieNamed(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionIssuesAndRestoresCookie(t *testing.T) {
	t.Parallel()

	var first, second SessionData
	h := sessionHandler(t, &first)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := cookieNamed(rec.Result(), SessionCookieName)
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)
	require.Len(t, first.ID, 26)
	require.NotEmpty(t, first.CSRFToken)

	h = sessionHandler(t, &second)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.CSRFToken, second.CSRFToken)
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	t.Parallel()

	var first, second SessionData
	rec := httptest.NewRecorder()
	sessionHandler(t, &first).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := cookieNamed(rec.Result(), SessionCookieName)

	payload, sig, ok := strings.Cut(ck.Value, ".")
	require.True(t, ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: payload + "x." + sig})
	sessionHandler(t, &second).ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, first.ID, second.ID)
}

func csrfStack(t *testing.T) http.Handler {
	t.Helper()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Session(SessionOptions{SigningKey: testKey})(CSRF(false)(final))
}

func TestCSRFAcceptsFormFieldAndHeader(t *testing.T) {
	t.Parallel()

	h := csrfStack(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	sessCookie := cookieNamed(rec.Result(), SessionCookieName)
	csrfCookie := cookieNamed(rec.Result(), CSRFCookieName)
	require.NotNil(t, sessCookie)
	require.NotNil(t, csrfCookie)
	token := csrfCookie.Value

	post := func(body url.Values, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/cerca", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if header != "" {
			req.Header.Set(CSRFHeader, header)
		}
		req.AddCookie(sessCookie)
		req.AddCookie(csrfCookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, post(url.Values{CSRFFormField: {token}}, ""))
	require.Equal(t, http.StatusNoContent, post(url.Values{}, token))
	require.Equal(t, http.StatusForbidden, post(url.Values{CSRFFormField: {"nope"}}, ""))
	require.Equal(t, http.StatusForbidden, post(url.Values{}, ""))
}

type fakeLangs struct{}

func (fakeLangs) Normalize(lang string) string {
	switch strings.ToLower(lang) {
	case "it", "en":
		return strings.ToLower(lang)
	}
	return ""
}

func (fakeLangs) Resolve(accept string) string {
	if strings.HasPrefix(accept, "en") {
		return "en"
	}
	return "it"
}

func TestLocaleResolutionOrder(t *testing.T) {
	t.Parallel()

	var got string
	h := Session(SessionOptions{SigningKey: testKey})(Locale(fakeLangs{}, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Lang(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "en", got)
	require.Equal(t, "en", rec.Header().Get("Content-Language"))
	require.Contains(t, rec.Header().Values("Vary"), "Accept-Language")

	// explicit choice persists into the session
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?hl=IT", nil))
	require.Equal(t, "it", got)
	sess := cookieNamed(rec.Result(), SessionCookieName)
	require.NotNil(t, sess)
	require.Equal(t, "it", cookieNamed(rec.Result(), LangCookieName).Value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en")
	req.AddCookie(sess)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "it", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "en"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "en", got)
}

func TestHTMXDetection(t *testing.T) {
	t.Parallel()

	var (
		is      bool
		partial Partial
		ok      bool
	)
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is = IsHTMX(r.Context())
		partial, ok = PartialFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/cerca", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Trigger", "searchButton")
	req.Header.Set("HX-Target", "app")
	req.Header.Set("HX-Current-URL", "https://settimohub.it/")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, is)
	require.True(t, ok)
	require.Equal(t, Partial{Trigger: "searchButton", Target: "app", CurrentURL: "https://settimohub.it/"}, partial)
	require.Equal(t, "HX-Request", rec.Header().Get("Vary"))

	req.Header.Set("HX-Boosted", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, is)
	require.False(t, ok)
}

func TestWriteErrorShapes(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chiMid.RequestIDKey, "req-1"))

	rec := httptest.NewRecorder()
	WriteError(rec, req.WithContext(WithHTMX(req.Context(), true)), http.StatusForbidden, "denied")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "none", rec.Header().Get("HX-Reswap"))
	require.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	require.JSONEq(t, `{"error":"denied","status":403,"request_id":"req-1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, req, http.StatusNotFound, "missing")
	require.Equal(t, "missing\n", rec.Body.String())
	require.Empty(t, rec.Header().Get("HX-Reswap"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAssetsETag(t *testing.T) {
	t.Parallel()

	h := AssetsWithCache(fstest.MapFS{"css/site.css": {Data: []byte("body{}")}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`))
	require.Equal(t, "body{}", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestRequestLoggerEmitsEntry(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(http.StatusTeapot), fields["status"])
	require.Equal(t, "/healthz", fields["path"])
}

func TestRequestLoggerSeesInnerMiddlewares(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	inner := HTMX(Session(SessionOptions{SigningKey: testKey})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})))
	h := RequestLogger(zap.New(core))(inner)

	req := httptest.NewRequest(http.MethodPost, "/categoria", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Trigger", "categoryGrid")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, true, fields["htmx"])
	require.Equal(t, "categoryGrid", fields["hx_trigger"])
	require.NotEmpty(t, fields["session"])
}

func TestResponseRecorderHookRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	rw := NewResponseRecorder(httptest.NewRecorder())
	rw.SetBeforeWrite(func(http.ResponseWriter) { calls++ })
	rw.WriteHeader(http.StatusCreated)
	_, _ = rw.Write([]byte("x"))
	require.Equal(t, 1, calls)
	require.Equal(t, http.StatusCreated, rw.Status())
	require.Equal(t, 1, rw.BytesWritten())
}
