//nolint:testpackage // using package name 'snap' to access unexported fields for testing
package snap

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyFlagSet() (*pflag.FlagSet, *string, *int, *bool, *time.Duration, *[]string) {
	fs := pflag.NewFlagSet("legacy", pflag.ContinueOnError)
	host := fs.StringP("host", "H", "localhost", "server host")
	port := fs.Int("port", 0, "server port")
	debug := fs.BoolP("debug", "d", false, "debug mode")
	wait := fs.Duration("wait", 5*time.Second, "wait time")
	tags := fs.StringSlice("tag", nil, "tags")
	return fs, host, port, debug, wait, tags
}

func TestImportFlagSet(t *testing.T) {
	fs, _, _, _, _, _ := legacyFlagSet()

	app := New("prog", "").EnvReader(MapEnvReader(nil))
	require.NoError(t, app.ImportFlagSet(fs))

	ctx, err := app.Parse([]string{"-dH", "example.org", "--tag", "a", "--tag", "b"})
	require.NoError(t, err)

	host, _ := ctx.String("host")
	assert.Equal(t, "example.org", host)
	debug, _ := ctx.Bool("debug")
	assert.True(t, debug)
	wait, _ := ctx.Duration("wait")
	assert.Equal(t, 5*time.Second, wait)
	assert.Equal(t, SourceDefault, ctx.Source("wait"))
	assert.Equal(t, SourceNone, ctx.Source("port"))
	tags, _ := ctx.StringSlice("tag")
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestApplyToFlagSet(t *testing.T) {
	fs, host, port, debug, wait, tags := legacyFlagSet()

	app := New("prog", "").EnvReader(MapEnvReader(map[string]string{"PORT": "9090"}))
	require.NoError(t, app.ImportFlagSet(fs))
	for _, flag := range app.Root().Flags() {
		if flag.Name == "port" {
			flag.EnvVars = []string{"PORT"}
		}
	}

	ctx, err := app.Parse([]string{"--debug", "--tag", "x,y"})
	require.NoError(t, err)
	require.NoError(t, ctx.ApplyToFlagSet(fs))

	assert.Equal(t, "localhost", *host)
	assert.Equal(t, 9090, *port)
	assert.True(t, *debug)
	assert.Equal(t, 5*time.Second, *wait)
	assert.Equal(t, []string{"x", "y"}, *tags)
	assert.True(t, fs.Changed("port"))
	assert.False(t, fs.Changed("host"))
}
