package tlsclient

import (
	"testing"

	"github.com/grepplabs/tls-acceptor/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewTLSClientConfig(t *testing.T) {
	bundle := testutil.NewCertsBundle()
	defer bundle.Close()

	tlsConfig, err := NewTLSClientConfigFromFile(bundle.CACert.Name(),
		WithTLSClientNextProtos([]string{"h2"}),
		WithTLSClientServerName("localhost"),
	)
	require.NoError(t, err)
	require.NotNil(t, tlsConfig.RootCAs)
	require.Equal(t, []string{"h2"}, tlsConfig.NextProtos)
	require.Equal(t, "localhost", tlsConfig.ServerName)

	_, err = NewTLSClientConfig([]byte("not a certificate"))
	require.Error(t, err)

	_, err = NewTLSClientConfigFromFile(bundle.CACert.Name() + ".missing")
	require.Error(t, err)
}
