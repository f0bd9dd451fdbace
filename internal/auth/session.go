package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

var ErrSessionExpired = errors.New("session expired")

type Session struct {
	UserID    string
	ExpiresAt time.Time
}

// SessionCodec signs and encrypts session cookies.
type SessionCodec struct {
	name   string
	maxAge time.Duration
	secure bool
	cookie *securecookie.SecureCookie
}

// NewSessionCodec builds a codec from base64 encoded keys. The block key may
// be empty, in which case cookies are signed but not encrypted.
func NewSessionCodec(name, hashKeyB64, blockKeyB64 string, maxAge time.Duration, secure bool) (*SessionCodec, error) {
	hashKey, err := base64.StdEncoding.DecodeString(hashKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("cookie hash key must be at least 32 bytes, got %d", len(hashKey))
	}

	var blockKey []byte
	if blockKeyB64 != "" {
		blockKey, err = base64.StdEncoding.DecodeString(blockKeyB64)
		if err != nil {
			return nil, fmt.Errorf("decode cookie block key: %w", err)
		}
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(int(maxAge.Seconds()))

	return &SessionCodec{
		name:   name,
		maxAge: maxAge,
		secure: secure,
		cookie: cookie,
	}, nil
}

func (c *SessionCodec) Name() string {
	return c.name
}

// Issue writes a fresh session cookie for userID.
func (c *SessionCodec) Issue(w http.ResponseWriter, userID string) error {
	session := Session{UserID: userID, ExpiresAt: time.Now().Add(c.maxAge)}

	encoded, err := c.cookie.Encode(c.name, session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	http.SetCookie(w, c.newCookie(c.name, encoded, int(c.maxAge.Seconds())))
	return nil
}

// Read decodes the session cookie on r, if any.
func (c *SessionCodec) Read(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.cookie.Decode(c.name, cookie.Value, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (c *SessionCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.newCookie(c.name, "", -1))
}

// EncodeValue and DecodeValue protect auxiliary cookies such as the managed
// provider access token.
func (c *SessionCodec) EncodeValue(name string, value string) (string, error) {
	return c.cookie.Encode(name, value)
}

func (c *SessionCodec) DecodeValue(name, encoded string) (string, error) {
	var value string
	err := c.cookie.Decode(name, encoded, &value)
	return value, err
}

func (c *SessionCodec) SetValueCookie(w http.ResponseWriter, name, value string, maxAge int) error {
	encoded, err := c.EncodeValue(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.newCookie(name, encoded, maxAge))
	return nil
}

func (c *SessionCodec) ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, c.newCookie(name, "", -1))
}

func (c *SessionCodec) newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Path:     "/",
	}
}
