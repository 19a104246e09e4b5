package chain

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptKey(testPrivateKey, "correct horse battery staple")
	require.NoError(t, err)

	var envelope encryptedKeyJSON
	require.NoError(t, json.Unmarshal(blob, &envelope))
	assert.Equal(t, currentVersion, envelope.Version)
	assert.NotEmpty(t, envelope.Salt)
	assert.NotEmpty(t, envelope.Ciphertext)

	got, err := DecryptKey(blob, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, got)
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptKey(testPrivateKey, "right")
	require.NoError(t, err)

	_, err = DecryptKey(blob, "wrong")
	require.Error(t, err)
}

func TestEncryptRejectsEmptyPassword(t *testing.T) {
	_, err := EncryptKey(testPrivateKey, "")
	require.Error(t, err)
}

func TestLoadKeyPrefersRawKey(t *testing.T) {
	got, err := LoadKey(KeyConfig{RawPrivateKey: "0x" + testPrivateKey})
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, got)
}

func TestLoadKeyFromEncryptedFile(t *testing.T) {
	blob, err := EncryptKey(testPrivateKey, "pw")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "operator.key.json")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	got, err := LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, got)
}

func TestClassifyChainErr(t *testing.T) {
	err := classifyChainErr("send mint tx",
		errors.New("insufficient funds for gas * price + value"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	err = classifyChainErr("estimate gas", errors.New("execution reverted"))
	assert.NotErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "estimate gas")
}
