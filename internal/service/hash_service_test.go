package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerifyPin(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("4912")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "hash should be in PHC string format")

	match, err := svc.Verify("4912", hash)
	require.NoError(t, err)
	assert.True(t, match, "matching PIN should verify")
}

func TestArgon2HashService_VerifyWrongPin(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("4912")
	require.NoError(t, err)

	match, err := svc.Verify("4913", hash)
	require.NoError(t, err)
	assert.False(t, match, "wrong PIN should not verify")
}

func TestArgon2HashService_SaltsAreUnique(t *testing.T) {
	svc := NewArgon2HashService()

	hash1, err := svc.Hash("123456")
	require.NoError(t, err)

	hash2, err := svc.Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "identical PINs must hash with distinct salts")
}

func TestArgon2HashService_HashEmbedsParams(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("0000")
	require.NoError(t, err)

	assert.Contains(t, hash, "m=65536,t=1,p=4", "cost parameters should travel with the hash")
}

func TestArgon2HashService_VerifyInvalidFormat(t *testing.T) {
	svc := NewArgon2HashService()

	_, err := svc.Verify("4912", "not-a-phc-hash")
	assert.Error(t, err)
}

func TestArgon2HashService_LongInput(t *testing.T) {
	svc := NewArgon2HashService()

	long := strings.Repeat("9", 1000)
	hash, err := svc.Hash(long)
	require.NoError(t, err)

	match, err := svc.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, match)
}
