package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testHashKey  = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("h", 32)))
	testBlockKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 32)))
)

func newTestCodec(t *testing.T, maxAge time.Duration) *SessionCodec {
	t.Helper()
	codec, err := NewSessionCodec("strot_session", testHashKey, testBlockKey, maxAge, false)
	require.NoError(t, err)
	return codec
}

func TestSessionRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Issue(rec, "user-1"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "strot_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])

	session, err := codec.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "strot_session", Value: "forged"})

	_, err := codec.Read(req)
	assert.Error(t, err)
}

func TestSessionMissingCookie(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	_, err := codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, http.ErrNoCookie)
}

func TestSessionClear(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	rec := httptest.NewRecorder()
	codec.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestNewSessionCodecKeyValidation(t *testing.T) {
	_, err := NewSessionCodec("s", "!!!", "", time.Hour, false)
	assert.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = NewSessionCodec("s", short, "", time.Hour, false)
	assert.Error(t, err)

	_, err = NewSessionCodec("s", testHashKey, "", time.Hour, false)
	assert.NoError(t, err)
}

func TestValueCookieRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	encoded, err := codec.EncodeValue("access", "token-value")
	require.NoError(t, err)

	decoded, err := codec.DecodeValue("access", encoded)
	require.NoError(t, err)
	assert.Equal(t, "token-value", decoded)

	_, err = codec.DecodeValue("other-name", encoded)
	assert.Error(t, err)
}
