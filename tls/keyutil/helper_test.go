package keyutil

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type keyGenFunc func() (crypto.PrivateKey, []byte, crypto.PublicKey, []byte, error)

func TestGenerateKeys(t *testing.T) {
	tests := []struct {
		name        string
		genKeysFunc keyGenFunc
		pemType     string
	}{
		{
			name:        "generate RSA key",
			genKeysFunc: GenerateRSAKeys,
			pemType:     PEMTypeRSAPrivateKey,
		},
		{
			name:        "generate EC keys",
			genKeysFunc: GenerateECKeys,
			pemType:     PEMTypeECPrivateKey,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			privKey, privPem, pubKey, pubPem, err := tc.genKeysFunc()
			require.NoError(t, err)
			require.True(t, KeysMatch(privKey, pubKey))

			block, _ := pem.Decode(privPem)
			require.NotNil(t, block)
			require.Equal(t, tc.pemType, block.Type)

			privateKey, err := ReadPrivateKey(bytes.NewReader(privPem))
			require.NoError(t, err)
			require.True(t, KeysMatch(privateKey, pubKey))

			publicKeys, err := ReadPublicKeys(bytes.NewReader(pubPem))
			require.NoError(t, err)
			require.Len(t, publicKeys, 1)
			require.True(t, KeysMatch(privateKey, publicKeys[0]))

			// the public key is derived from a private key block
			publicKeys, err = ReadPublicKeys(bytes.NewReader(privPem))
			require.NoError(t, err)
			require.Len(t, publicKeys, 1)

			pkcs8Pem, err := MarshalPrivateKeyToPEM(privateKey)
			require.NoError(t, err)
			block, _ = pem.Decode(pkcs8Pem)
			require.NotNil(t, block)
			require.Equal(t, PEMTypePrivateKey, block.Type)
			fromPKCS8, err := ParsePrivateKeyPEM(pkcs8Pem)
			require.NoError(t, err)
			require.True(t, KeysMatch(fromPKCS8, pubKey))
		})
	}
}

func TestEncryptedPrivateKey(t *testing.T) {
	for _, genKeysFunc := range []keyGenFunc{GenerateRSAKeys, GenerateECKeys} {
		privKey, _, pubKey, _, err := genKeysFunc()
		require.NoError(t, err)

		encPem, err := MarshalEncryptedPrivateKeyToPEM(privKey, []byte("secret"))
		require.NoError(t, err)
		block, _ := pem.Decode(encPem)
		require.NotNil(t, block)
		require.Equal(t, PEMTypeEncryptedPrivateKey, block.Type)

		// not readable as a plain key
		_, err = ParsePrivateKeyPEM(encPem)
		require.ErrorIs(t, err, ErrNoPrivateKey)

		decrypted, err := ParseEncryptedPrivateKeyDER(block.Bytes, []byte("secret"))
		require.NoError(t, err)
		require.True(t, KeysMatch(decrypted, pubKey))

		_, err = ParseEncryptedPrivateKeyDER(block.Bytes, []byte("not-the-secret"))
		require.Error(t, err)
	}
}

func TestParsePrivateKeyDER(t *testing.T) {
	rsaKey, rsaPem, rsaPub, _, err := GenerateRSAKeys()
	require.NoError(t, err)
	ecKey, ecPem, ecPub, _, err := GenerateECKeys()
	require.NoError(t, err)

	rsaPKCS8, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	require.NoError(t, err)
	ecPKCS8, err := x509.MarshalPKCS8PrivateKey(ecKey)
	require.NoError(t, err)
	rsaPKCS1, _ := pem.Decode(rsaPem)
	ecSEC1, _ := pem.Decode(ecPem)

	tests := []struct {
		name   string
		der    []byte
		pubKey crypto.PublicKey
	}{
		{name: "pkcs1", der: rsaPKCS1.Bytes, pubKey: rsaPub},
		{name: "rsa pkcs8", der: rsaPKCS8, pubKey: rsaPub},
		{name: "sec1", der: ecSEC1.Bytes, pubKey: ecPub},
		{name: "ec pkcs8", der: ecPKCS8, pubKey: ecPub},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, err := ParsePrivateKeyDER(tc.der)
			require.NoError(t, err)
			require.True(t, KeysMatch(key, tc.pubKey))
		})
	}

	_, err = ParsePrivateKeyDER([]byte("garbage"))
	require.Error(t, err)
}

func TestReadKeys(t *testing.T) {
	tests := []struct {
		name        string
		genKeysFunc keyGenFunc
	}{
		{
			name:        "generate and read RSA key",
			genKeysFunc: GenerateRSAKeys,
		},
		{
			name:        "generate and read EC keys",
			genKeysFunc: GenerateECKeys,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dirName := t.TempDir()
			privFile := filepath.Join(dirName, "private-key.pem")
			pubFile := filepath.Join(dirName, "public-key.pem")

			_, privPem, _, pubPem, err := tc.genKeysFunc()
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(privFile, privPem, 0o600))
			require.NoError(t, os.WriteFile(pubFile, pubPem, 0o600))

			privKey, err := ReadPrivateKeyFile(privFile)
			require.NoError(t, err)

			pubKey, err := ReadPublicKeyFile(pubFile)
			require.NoError(t, err)
			require.True(t, KeysMatch(privKey, pubKey))

			_, err = ReadPrivateKeyFile(pubFile)
			require.ErrorIs(t, err, ErrNoPrivateKey)
			_, err = ReadPublicKeyFile(filepath.Join(dirName, "missing.pem"))
			require.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}
