package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMaster() string {
	raw := make([]byte, masterLen)
	for i := range raw {
		raw[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestRoundTrip(t *testing.T) {
	kr, err := NewKeyRing(testMaster())
	require.NoError(t, err)

	ct, err := kr.Encrypt("sk-super-secret")
	require.NoError(t, err)
	require.NotEmpty(t, ct)

	plain, err := kr.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, "sk-super-secret", plain)
}

func TestRejectsWrongLength(t *testing.T) {
	_, err := NewKeyRing(base64.StdEncoding.EncodeToString([]byte("too-short")))
	require.Error(t, err)
}

func TestRejectsBadBase64(t *testing.T) {
	_, err := NewKeyRing("not base64!!!")
	require.Error(t, err)
}

func TestDecryptTooShort(t *testing.T) {
	kr, err := NewKeyRing(testMaster())
	require.NoError(t, err)

	_, err = kr.Decrypt([]byte("short"))
	require.Error(t, err)
}
