//nolint:testpackage // using package name 'snap' to access unexported fields for testing
package snap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputGroupApp() *App {
	app := New("prog", "")
	app.FlagGroup("output").MutuallyExclusive().
		BoolFlag("json", "").Back().
		BoolFlag("yaml", "").Back().
		EndGroup()
	return app
}

func TestMutuallyExclusive(t *testing.T) {
	_, err := outputGroupApp().Parse([]string{"--json"})
	require.NoError(t, err)

	pe := parseErr(t, outputGroupApp(), "--yaml", "--json")
	assert.Equal(t, KindMutuallyExclusive, pe.Kind)
	assert.Equal(t, "option --json cannot be used with --yaml", pe.Message)
}

func TestMutuallyExclusiveSameOptionTwice(t *testing.T) {
	_, err := outputGroupApp().Parse([]string{"--json", "--json"})
	assert.NoError(t, err)
}

func TestMutuallyExclusiveIgnoresEnvAndValueSource(t *testing.T) {
	build := func() *App {
		app := New("prog", "").
			EnvReader(MapEnvReader(map[string]string{"OUT_YAML": "1"})).
			ValueSource(MapValueSource{"table": "true"})
		app.FlagGroup("output").MutuallyExclusive().
			BoolFlag("json", "").Back().
			BoolFlag("yaml", "").FromEnv("OUT_YAML").Back().
			BoolFlag("table", "").Back().
			EndGroup()
		return app
	}

	ctx, err := build().Parse([]string{"--json"})
	require.NoError(t, err)
	assert.Equal(t, SourceArgv, ctx.Source("json"))
	assert.Equal(t, SourceEnv, ctx.Source("yaml"))
	assert.Equal(t, SourceValueSource, ctx.Source("table"))

	pe := parseErr(t, build(), "--json", "--table")
	assert.Equal(t, KindMutuallyExclusive, pe.Kind)
	assert.Equal(t, "option --table cannot be used with --json", pe.Message)
}

func TestCoOccurring(t *testing.T) {
	build := func() *App {
		app := New("prog", "")
		app.FlagGroup("auth").CoOccurring().
			StringFlag("user", "").Required().Back().
			StringFlag("password", "").Required().Back().
			StringFlag("realm", "").Back().
			EndGroup()
		return app
	}

	// Nothing given: required members are not required on their own.
	_, err := build().Parse(nil)
	require.NoError(t, err)

	_, err = build().Parse([]string{"--user", "u", "--password", "p"})
	require.NoError(t, err)

	pe := parseErr(t, build(), "--realm", "r", "--user", "u")
	assert.Equal(t, KindMissingParameter, pe.Kind)
	assert.Equal(t, "--password", pe.Param)
	assert.Contains(t, pe.Message, "required when --realm is given")
}

func TestExactlyOne(t *testing.T) {
	build := func() *App {
		app := New("prog", "")
		app.FlagGroup("source").ExactlyOne().
			StringFlag("file", "").Back().
			StringFlag("url", "").Back().
			EndGroup()
		return app
	}

	pe := parseErr(t, build())
	assert.Equal(t, KindMissingParameter, pe.Kind)
	assert.Equal(t, "group 'source' requires exactly one of [--file, --url]", pe.Message)

	pe = parseErr(t, build(), "--file", "a", "--url", "b")
	assert.Equal(t, KindMutuallyExclusive, pe.Kind)

	_, err := build().Parse([]string{"--url", "b"})
	assert.NoError(t, err)
}

func TestAtLeastOneAndAllOrNone(t *testing.T) {
	app := New("prog", "")
	app.FlagGroup("target").AtLeastOne().
		StringFlag("host", "").Back().
		StringFlag("socket", "").Back().
		EndGroup()
	pe := parseErr(t, app)
	assert.Equal(t, KindMissingParameter, pe.Kind)

	app = New("prog", "")
	app.FlagGroup("tls").AllOrNone().
		StringFlag("cert", "").Back().
		StringFlag("key", "").Back().
		EndGroup()
	pe = parseErr(t, app, "--cert", "c.pem")
	assert.Equal(t, KindUsage, pe.Kind)
}

func TestDefaultsDoNotCountForGroups(t *testing.T) {
	app := New("prog", "")
	app.FlagGroup("output").MutuallyExclusive().
		StringFlag("format", "").Default("text").Back().
		BoolFlag("raw", "").Back().
		EndGroup()

	_, err := app.Parse([]string{"--raw"})
	assert.NoError(t, err)
}

func TestAllUsageErrorsReported(t *testing.T) {
	app := New("prog", "")
	app.IntFlag("port", "")
	app.StringFlag("name", "").Required()
	app.FlagGroup("output").MutuallyExclusive().
		BoolFlag("json", "").Back().
		BoolFlag("yaml", "").Back().
		EndGroup()

	_, err := app.Parse([]string{"--port", "abc", "--json", "--yaml"})
	var multi *MultiUsageError
	require.ErrorAs(t, err, &multi)

	kinds := make([]ErrorKind, 0, len(multi.Errors()))
	for _, e := range multi.Errors() {
		kinds = append(kinds, e.Kind)
		assert.Equal(t, []string{"prog"}, e.CommandPath)
	}
	assert.Equal(t, []ErrorKind{KindBadParameterValue, KindMissingParameter, KindMutuallyExclusive}, kinds)
	assert.True(t, errors.Is(err, ErrMutuallyExclusive))
	assert.True(t, errors.Is(err, ErrMissingParameter))
}
