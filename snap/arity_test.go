//nolint:testpackage // using package name 'snap' to access unexported fields for testing
package snap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(values ...string) []Token {
	out := make([]Token, len(values))
	for i, v := range values {
		out[i] = Token{Value: v}
	}
	return out
}

func TestResolveArityVariadicReservesTrailingSlots(t *testing.T) {
	first := &Arg{Name: "first", Nargs: 1, Required: true}
	second := &Arg{Name: "second", Nargs: -1}
	third := &Arg{Name: "third", Nargs: 1, Required: true}

	assigned, excess, err := resolveArity([]*Arg{first, second, third}, toks("a", "b", "c", "d"))
	require.Nil(t, err)
	assert.Empty(t, excess)
	assert.Equal(t, []string{"a"}, tokenValues(assigned[first]))
	assert.Equal(t, []string{"b", "c"}, tokenValues(assigned[second]))
	assert.Equal(t, []string{"d"}, tokenValues(assigned[third]))
}

func TestResolveArityEmptyVariadic(t *testing.T) {
	first := &Arg{Name: "first", Nargs: 1, Required: true}
	rest := &Arg{Name: "rest", Nargs: -1}
	last := &Arg{Name: "last", Nargs: 2, Required: true}

	assigned, excess, err := resolveArity([]*Arg{first, rest, last}, toks("a", "b", "c"))
	require.Nil(t, err)
	assert.Empty(t, excess)
	assert.Equal(t, []string{"a"}, tokenValues(assigned[first]))
	assert.Empty(t, assigned[rest])
	assert.Equal(t, []string{"b", "c"}, tokenValues(assigned[last]))
}

func TestResolveArityMissing(t *testing.T) {
	src := &Arg{Name: "src", Nargs: 1, Required: true}
	dst := &Arg{Name: "dst", Nargs: 1, Required: true}

	_, _, err := resolveArity([]*Arg{src, dst}, toks("a"))
	require.NotNil(t, err)
	assert.Equal(t, KindMissingParameter, err.Kind)
	assert.Equal(t, "DST", err.Param)
}

func TestResolveArityShortMultiValue(t *testing.T) {
	pair := &Arg{Name: "pair", Nargs: 2, Required: true}

	_, _, err := resolveArity([]*Arg{pair}, toks("x"))
	require.NotNil(t, err)
	assert.Equal(t, KindBadArgumentUsage, err.Kind)
}

func TestResolveArityOptionalAndExcess(t *testing.T) {
	name := &Arg{Name: "name", Nargs: 1}

	assigned, excess, err := resolveArity([]*Arg{name}, nil)
	require.Nil(t, err)
	assert.Empty(t, assigned[name])
	assert.Empty(t, excess)

	_, excess, err = resolveArity([]*Arg{name}, toks("a", "b", "c"))
	require.Nil(t, err)
	assert.Equal(t, []string{"b", "c"}, tokenValues(excess))
}

func TestArgumentsEndToEnd(t *testing.T) {
	app := New("cp", "")
	app.StringArg("first", "").Required()
	app.StringSliceArg("second", "")
	app.StringArg("third", "").Required()

	ctx, err := app.Parse([]string{"a", "b", "c", "d"})
	require.NoError(t, err)

	first, _ := ctx.ArgString("first")
	second, _ := ctx.ArgStrings("second")
	third, _ := ctx.ArgString("third")
	assert.Equal(t, "a", first)
	assert.Equal(t, []string{"b", "c"}, second)
	assert.Equal(t, "d", third)
	assert.Equal(t, 4, ctx.NArgs())
}

func TestArgumentDefaultsAndConversion(t *testing.T) {
	app := New("prog", "")
	app.IntArg("count", "")
	app.StringArg("mode", "").Default("fast")

	ctx, err := app.Parse([]string{"0x10"})
	require.NoError(t, err)
	n, _ := ctx.ArgInt("count")
	assert.Equal(t, 16, n)
	mode, ok := ctx.ArgString("mode")
	assert.True(t, ok)
	assert.Equal(t, "fast", mode)

	pe := parseErr(t, New("prog", "").IntArg("count", "").App(), "ten")
	assert.Equal(t, KindBadParameterValue, pe.Kind)
	assert.Equal(t, "COUNT", pe.Param)
}

func TestRequiredVariadicArgument(t *testing.T) {
	app := New("rm", "")
	app.StringSliceArg("files", "").Required()

	pe := parseErr(t, app)
	assert.Equal(t, KindMissingParameter, pe.Kind)
	assert.Equal(t, "FILES", pe.Param)
}

func TestExtraArguments(t *testing.T) {
	app := New("prog", "")
	app.StringArg("name", "")

	pe := parseErr(t, app, "a", "b")
	assert.Equal(t, KindUsage, pe.Kind)
	assert.Equal(t, `got unexpected extra argument ("b")`, pe.Message)
}

func TestArgumentValidator(t *testing.T) {
	app := New("prog", "")
	app.IntArg("port", "").Validate(func(p int) error {
		if p < 1024 {
			return assert.AnError
		}
		return nil
	})

	_, err := app.Parse([]string{"8080"})
	require.NoError(t, err)

	pe := parseErr(t, app, "80")
	assert.Equal(t, KindBadParameterValue, pe.Kind)
	assert.ErrorIs(t, pe, assert.AnError)
}
