package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookieRoundTrip(t *testing.T) {
	sc := SessionCookie{Name: "s", Secret: []byte("secret"), TTL: time.Hour}

	token, err := sc.Sign("abc-123", time.Now())
	require.NoError(t, err)

	id, err := sc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestSessionCookieRejects(t *testing.T) {
	sc := SessionCookie{Name: "s", Secret: []byte("secret"), TTL: time.Hour}

	expired, err := sc.Sign("abc", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	other := SessionCookie{Secret: []byte("other"), TTL: time.Hour}
	forged, err := other.Sign("abc", time.Now())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString(sc.Secret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":    expired,
		"forged":     forged,
		"unsigned":   unsigned,
		"no subject": noSubject,
		"garbage":    "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := sc.Parse(token)
			assert.Error(t, err)
		})
	}
}
