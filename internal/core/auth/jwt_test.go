package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "club-store-test", TTL: time.Hour}
}

func TestIssueParseRoundtrip(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("u-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "club-store-test", c.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another"), Issuer: j.Issuer, TTL: j.TTL}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: j.TTL}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	// 过期时间早于 leeway 窗口
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "club-store-test", TTL: -2 * time.Minute}
	tok, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsForeignAlg(t *testing.T) {
	j := newTestJWTer()
	// alg=none 的令牌必须被拒
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UID: "u-1", Role: "admin"})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}
