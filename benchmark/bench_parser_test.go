//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	"github.com/dzonerzy/snapargv/snap"
)

// Category: parser

func buildSimpleApp() *snap.App {
	return snap.New("bench", "bench").
		EnvReader(snap.MapEnvReader(nil)).
		IntFlag("port", "").Default(8080).Back().
		BoolFlag("verbose", "").Back()
}

func BenchmarkParserSimple(b *testing.B) {
	app := buildSimpleApp()
	args := []string{"--port", "8080", "--verbose"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx, err := app.Parse(args)
		if err != nil {
			b.Fatal(err)
		}
		if v, ok := ctx.Bool("verbose"); !ok || !v {
			b.Fatalf("verbose not parsed")
		}
	}
}

func BenchmarkParserSubcommand(b *testing.B) {
	app := snap.New("bench", "bench").
		EnvReader(snap.MapEnvReader(nil)).
		BoolFlag("global", "").Back()
	app.Command("serve", "").
		IntFlag("port", "").Default(8080).Back().
		StringFlag("host", "").Default("localhost").Back()
	args := []string{"--global", "serve", "--port", "8080", "--host", "localhost"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx, err := app.Parse(args)
		if err != nil {
			b.Fatal(err)
		}
		if ctx.InvokedSubcommand() != "serve" {
			b.Fatalf("command mismatch")
		}
	}
}

func BenchmarkParserLongFlags(b *testing.B) {
	app := buildSimpleApp().StringFlag("config", "").Back()
	args := []string{"--port=8080", "--verbose", "--config=/path/to/config.json"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParserShortCluster(b *testing.B) {
	app := snap.New("bench", "bench").
		EnvReader(snap.MapEnvReader(nil)).
		BoolFlag("all", "").Short('a').Back().
		BoolFlag("brief", "").Short('b').Back().
		IntFlag("port", "").Short('p').Default(8080).Back()
	args := []string{"-abp", "8080"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParserErrorSuggestion(b *testing.B) {
	app := buildSimpleApp()
	args := []string{"--prot", "8080"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err == nil {
			b.Fatal("expected error")
		}
	}
}

func BenchmarkParserArgFile(b *testing.B) {
	app := buildSimpleApp().FileReader(snap.MapFileReader{
		"base.args":  "--port 9000 @extra.args",
		"extra.args": "# comment\n--verbose",
	})
	args := []string{"@base.args"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParserArity(b *testing.B) {
	app := snap.New("bench", "bench").EnvReader(snap.MapEnvReader(nil))
	app.StringArg("src", "").Required()
	app.StringSliceArg("files", "")
	app.StringArg("dst", "").Required()
	args := []string{"a", "b", "c", "d", "e", "f"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComprehensiveFlagTypes(b *testing.B) {
	app := snap.New("bench", "bench").
		EnvReader(snap.MapEnvReader(nil)).
		StringFlag("name", "").Back().
		IntFlag("port", "").Back().
		BoolFlag("verbose", "").Back().
		DurationFlag("timeout", "").Back().
		FloatFlag("ratio", "").Back().
		StringSliceFlag("tags", "").Back().
		IntSliceFlag("ports", "").Back()
	args := []string{
		"--name", "snapargv",
		"--port", "0xFF",
		"--verbose",
		"--timeout", "1h30m",
		"--ratio", "3.14",
		"--tags", "cli,parser,go",
		"--ports", "80,443,8080",
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFlagGroupParsing(b *testing.B) {
	app := snap.New("bench", "bench").
		EnvReader(snap.MapEnvReader(nil)).
		FlagGroup("output").
		MutuallyExclusive().
		BoolFlag("json", "").Back().
		BoolFlag("yaml", "").Back().
		EndGroup().
		StringFlag("config", "").Back()
	args := []string{"--json", "--config", "test.conf"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}
