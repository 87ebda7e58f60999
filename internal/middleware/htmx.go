package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Partial describes an htmx request that swaps a fragment of the page.
type Partial struct {
	// Trigger is the id of the control that fired the request.
	Trigger string
	// Target is the id of the element the response replaces.
	Target string
	// CurrentURL is the browser location when the request was sent.
	CurrentURL string
}

// HTMX recognises partial requests sent by htmx. Boosted links and forms
// navigate the whole page, so they are served like plain requests.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "HX-Request")
		h := r.Header
		if h.Get("HX-Request") != "true" || h.Get("HX-Boosted") == "true" {
			next.ServeHTTP(w, r)
			return
		}
		p := Partial{
			Trigger:    strings.TrimSpace(h.Get("HX-Trigger")),
			Target:     strings.TrimSpace(h.Get("HX-Target")),
			CurrentURL: h.Get("HX-Current-URL"),
		}
		ctx := WithHTMX(r.Context(), true)
		ctx = context.WithValue(ctx, ctxKeyPartial, p)
		note(ctx, func(n *requestNotes) {
			n.htmx = true
			n.trigger = p.Trigger
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PartialFromContext returns the htmx headers of a partial request.
func PartialFromContext(ctx context.Context) (Partial, bool) {
	p, ok := ctx.Value(ctxKeyPartial).(Partial)
	return p, ok
}
