package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	HashCost = bcrypt.MinCost
	t.Cleanup(func() { HashCost = bcrypt.DefaultCost })

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "S3cret"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	a, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	b, err := GenerateTemporaryPassword()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestValidEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"ana@acme.io":        true,
		"first.last@a.b.com": true,
		"ana@localhost":      false,
		"ana.acme.io":        false,
		"Ana <ana@acme.io>":  false,
		"":                   false,
	} {
		assert.Equal(t, want, ValidEmail(email), email)
	}
}

func TestDateOfAndSameDay(t *testing.T) {
	paris := time.FixedZone("CET", 3600)

	ts := time.Date(2024, 3, 10, 23, 59, 30, 5, paris)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, paris), DateOf(ts))

	assert.True(t, SameDay(ts, DateOf(ts)))
	assert.True(t, SameDay(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), ts))
	assert.False(t, SameDay(ts, ts.Add(time.Minute)))
}
