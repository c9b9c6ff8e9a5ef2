package checkintoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-gizli-anahtar"

func TestIssueAndParseRoundtrip(t *testing.T) {
	now := time.Now()
	token, err := Issue(testSecret, "GALA25", "$2a$10$ornekhash", time.Hour, now)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "GALA25", claims.EventCode)
	assert.Equal(t, "$2a$10$ornekhash", claims.PinHash)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Issue(testSecret, "GALA25", "hash", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = Parse("baska-anahtar", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Issue(testSecret, "GALA25", "hash", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = Parse(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(testSecret, "bozuk.token.degeri")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := Issue("", "GALA25", "hash", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = Parse("", "her.hangi.token")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestParseRejectsEmptyClaims(t *testing.T) {
	token, err := Issue(testSecret, "", "hash", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = Parse(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
