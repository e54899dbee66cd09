package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "bookmarks-api"}
	kid := NewKeyID()

	tok, err := j.Issue(42, "admin", kid)
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, kid, c.ID)
	assert.Nil(t, c.ExpiresAt)
}

func TestParseRejects(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "bookmarks-api"}
	tok, err := j.Issue(1, "user", NewKeyID())
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "bookmarks-api"}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIss := &JWTer{Secret: []byte("s3cret"), Issuer: "someone-else"}
	_, err = wrongIss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = j.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noKid, err := j.Issue(1, "user", "")
	require.NoError(t, err)
	_, err = j.Parse(noKid)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiringKeys(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "x", TTL: -2 * time.Minute}
	tok, err := j.Issue(1, "user", NewKeyID())
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
