package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"finitefield.org/ofertas-web/internal/session"
)

const SessionCookieName = "OFERTAS_SESSION"

// SessionData is the signed cookie payload identifying a browser session.
type SessionData struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// Sessions issues and verifies the signed session cookie.
type Sessions struct {
	signKey []byte
	secure  bool
}

// NewSessions builds the cookie signer. An empty key gets a process-ephemeral one.
func NewSessions(signKey []byte, secure bool) *Sessions {
	if len(signKey) == 0 {
		signKey = make([]byte, 32)
		if _, err := rand.Read(signKey); err != nil {
			signKey = []byte("insecure-dev-key-please-set-OFERTAS_SESSION_SIGNING_KEY")
		}
	}
	return &Sessions{signKey: signKey, secure: secure}
}

// Middleware loads or initializes the session and stores it in request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			sd.ID = session.NewID()
			sd.CreatedAt = time.Now().UTC()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// the cookie has to go out before the first byte of the body
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		if !rw.wrote && (sd.dirty || !fromCookie) {
			s.write(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sigB, s.sign(payloadB)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(s.sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.signKey)
	mac.Write(payload)
	return mac.Sum(nil)
}
