package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQRTokenRoundTrip(t *testing.T) {
	signer := NewQRSigner("secret")
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	token := signer.Token("b1", "s1", start, end)
	assert.NotEmpty(t, token)
	assert.True(t, signer.Verify(token, "b1", "s1", start, end))
}

func TestQRTokenRejectsTamperedFields(t *testing.T) {
	signer := NewQRSigner("secret")
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	token := signer.Token("b1", "s1", start, end)

	assert.False(t, signer.Verify(token, "b2", "s1", start, end))
	assert.False(t, signer.Verify(token, "b1", "s2", start, end))
	assert.False(t, signer.Verify(token, "b1", "s1", start.Add(time.Hour), end))
	assert.False(t, signer.Verify(token, "b1", "s1", start, end.Add(time.Hour)))
	assert.False(t, signer.Verify("not-a-token", "b1", "s1", start, end))
}

func TestQRTokenSecretMatters(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	token := NewQRSigner("secret-a").Token("b1", "s1", start, end)
	assert.False(t, NewQRSigner("secret-b").Verify(token, "b1", "s1", start, end))
}
