package mcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SeededBlocklist(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.IsHighRisk("7995"), "gambling must be seeded")
	assert.False(t, r.IsHighRisk("5411"))
}

func TestRegistry_AddAndRemoveBlocklist(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddToBlocklist("5411"))
	assert.True(t, r.IsHighRisk("5411"))

	r.RemoveFromBlocklist("5411")
	assert.False(t, r.IsHighRisk("5411"))
}

func TestRegistry_ValidateRejectsBadCodes(t *testing.T) {
	r := NewRegistry()
	for _, code := range []string{"", "12", "12345", "abcd", "0000"} {
		assert.Error(t, r.AddToBlocklist(code), "code %q must be rejected", code)
	}
}

func TestRegistry_WhitelistMode(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddToWhitelist("7995"))
	assert.False(t, r.IsHighRisk("7995"), "whitelisted code is never high risk")

	r.RemoveFromWhitelist("7995")
	assert.True(t, r.IsHighRisk("7995"), "emptying the whitelist disables whitelist mode")
}

func TestRegistry_ListCap(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxCodes; i++ {
		code := 1000 + i
		if err := r.AddToBlocklist(intToCode(code)); err != nil {
			// Cap reached before the loop ends: expected once the seeded
			// entries plus additions hit MaxCodes.
			assert.Less(t, i+len(defaultBlocklist), MaxCodes+1)
			return
		}
	}
	assert.Error(t, r.AddToBlocklist("9999"))
}

func intToCode(n int) string {
	return string([]byte{
		byte('0' + n/1000%10),
		byte('0' + n/100%10),
		byte('0' + n/10%10),
		byte('0' + n%10),
	})
}
