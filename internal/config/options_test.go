package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestCompleteFailsWithoutMasterKey(t *testing.T) {
	viper.Reset()
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, viper.BindPFlags(fs))

	err := opts.Complete()
	require.Error(t, err)
}

func TestCompletePopulatesFromFlags(t *testing.T) {
	viper.Reset()
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--master-key=c2VjcmV0", "--http-addr=:9000"}))
	require.NoError(t, viper.BindPFlags(fs))

	require.NoError(t, opts.Complete())
	require.Equal(t, "c2VjcmV0", opts.MasterKey)
	require.Equal(t, ":9000", opts.HTTPAddr)
}
