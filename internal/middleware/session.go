package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SessionCookieName names the signed session cookie.
const SessionCookieName = "SETTIMO_SESSION"

const defaultSessionMaxAge = 30 * time.Minute

// SessionData is the visitor state carried in the signed cookie. The ID keys
// the server-side controller registry.
type SessionData struct {
	ID        string    `json:"id"`
	Lang      string    `json:"lang,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// SessionOptions configures the Session middleware.
type SessionOptions struct {
	// SigningKey signs the cookie payload. Empty generates a process-ephemeral key.
	SigningKey string
	Secure     bool
	MaxAge     time.Duration
	Logger     *zap.Logger
}

type sessionCodec struct {
	key    []byte
	secure bool
	maxAge time.Duration
}

// Session loads or initializes a session and stores it in request context.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	codec := newSessionCodec(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, fromCookie := codec.read(r)
			if sd.ID == "" {
				now := time.Now().UTC()
				sd = &SessionData{
					ID:        ulid.Make().String(),
					CreatedAt: now,
					UpdatedAt: now,
					CSRFToken: newCSRFToken(),
					dirty:     true,
				}
			}
			ctx := WithSession(r.Context(), sd)
			note(ctx, func(n *requestNotes) { n.session = sd.ID })
			rw := NewResponseRecorder(w)
			// set the cookie just before the first write
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if sd.dirty || !fromCookie {
					codec.write(w, sd)
				}
			})
			next.ServeHTTP(rw, r.WithContext(ctx))
			// nothing written (e.g. HEAD with no body)
			if !rw.Written() && (sd.dirty || !fromCookie) {
				codec.write(w, sd)
			}
		})
	}
}

func newSessionCodec(opts SessionOptions) *sessionCodec {
	key := []byte(opts.SigningKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("insecure-dev-key-please-set-SETTIMO_SESSION_KEY")
		}
		if opts.Logger != nil {
			opts.Logger.Warn("session: using ephemeral signing key; set SETTIMO_SESSION_KEY for production")
		}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = defaultSessionMaxAge
	}
	return &sessionCodec{key: key, secure: opts.Secure, maxAge: maxAge}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SetLang records the preferred language, marking the session dirty on change.
func (s *SessionData) SetLang(lang string) {
	if s == nil || s.Lang == lang {
		return
	}
	s.Lang = lang
	s.MarkDirty()
}

// read parses and verifies the session cookie
func (c *sessionCodec) read(r *http.Request) (*SessionData, bool) {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(ck.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sig, c.sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	if _, err := ulid.ParseStrict(sd.ID); err != nil {
		return &SessionData{}, false
	}
	// sliding expiry: refresh the cookie on every response
	sd.dirty = true
	return &sd, true
}

func (c *sessionCodec) write(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(c.sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.maxAge / time.Second),
	})
}

func (c *sessionCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	return mac.Sum(nil)
}
