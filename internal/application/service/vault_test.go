package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultMaskUnmaskRoundtrip(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{
		"password": "hunter2",
		"username": "alice@example.com",
	})

	original := "login with alice@example.com and hunter2"
	masked := v.Mask(original)

	assert.Equal(t, "login with [username] and [password]", masked)
	assert.Equal(t, original, v.Unmask(masked))
}

func TestVaultMaskNeverLeaksSecrets(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{"api_key": "sk-very-secret-token"})

	masked := v.Mask("the key is sk-very-secret-token, use sk-very-secret-token twice")
	assert.NotContains(t, masked, "sk-very-secret-token")
	assert.Equal(t, "the key is [api_key], use [api_key] twice", masked)
}

func TestVaultOverlappingSecretsLongestFirst(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{
		"short": "secret",
		"long":  "secret-extended",
	})

	// The longer value must be masked whole, not partially eaten by the
	// shorter one.
	masked := v.Mask("value is secret-extended and also secret")
	assert.Equal(t, "value is [long] and also [short]", masked)
}

func TestVaultUnmaskBareToken(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{"password": "hunter2"})

	assert.Equal(t, "hunter2", v.Unmask("[password]"))
	assert.Equal(t, "hunter2", v.Unmask("password"))
	assert.Equal(t, "hunter2", v.Unmask("  password  "))
	assert.Equal(t, "not a password", v.Unmask("not a password"))
}

func TestVaultDescribeListsNamesOnly(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{
		"password": "hunter2",
		"username": "alice",
	})

	desc := v.Describe()
	assert.Contains(t, desc, "[password]")
	assert.Contains(t, desc, "[username]")
	assert.NotContains(t, desc, "hunter2")
	assert.NotContains(t, desc, "alice")
}

func TestVaultEmpty(t *testing.T) {
	v := NewVault()

	require.Equal(t, 0, v.Len())
	assert.Equal(t, "text", v.Mask("text"))
	assert.Equal(t, "text", v.Unmask("text"))
	assert.Empty(t, v.Describe())
}

func TestVaultAddLastWriteWins(t *testing.T) {
	v := NewVault()
	v.Add(map[string]string{"token": "old"})
	v.Add(map[string]string{"token": "new"})

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, "use [token]", v.Mask("use new"))
	assert.Equal(t, "use old", v.Mask("use old"))
}
