package benchmark_test

import (
	"context"
	"testing"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/urfave/cli/v2"

	"github.com/dzonerzy/snapargv/snap"
)

// Each scenario parses the same argv with all three libraries and runs a
// no-op action. cobra and urfave rebuild their command tree per iteration
// because they keep parse state on it.

// Short option clusters: counted -vvv plus -xzf with an attached value.

var clusterArgs = []string{"-vvv", "-xzf", "archive.tar", "src"}

func BenchmarkShortClusters_Snap(b *testing.B) {
	app := snap.New("tar", "")
	app.CountFlag("verbose", "").Short('v')
	app.BoolFlag("extract", "").Short('x')
	app.BoolFlag("gzip", "").Short('z')
	app.StringFlag("file", "").Short('f')
	app.StringSliceArg("paths", "")
	app.Action(func(*snap.Context) error { return nil })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = app.RunWithArgs(context.Background(), clusterArgs)
	}
}

func BenchmarkShortClusters_Cobra(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := &cobra.Command{Use: "tar", Run: func(*cobra.Command, []string) {}}
		cmd.Flags().CountP("verbose", "v", "")
		cmd.Flags().BoolP("extract", "x", false, "")
		cmd.Flags().BoolP("gzip", "z", false, "")
		cmd.Flags().StringP("file", "f", "", "")
		cmd.SetArgs(clusterArgs)
		_ = cmd.Execute()
	}
}

func BenchmarkShortClusters_Urfave(b *testing.B) {
	argv := append([]string{"tar"}, clusterArgs...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var verbose int
		app := &cli.App{
			Name:                   "tar",
			UseShortOptionHandling: true,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Count: &verbose},
				&cli.BoolFlag{Name: "extract", Aliases: []string{"x"}},
				&cli.BoolFlag{Name: "gzip", Aliases: []string{"z"}},
				&cli.StringFlag{Name: "file", Aliases: []string{"f"}},
			},
			Action: func(*cli.Context) error { return nil },
		}
		_ = app.Run(argv)
	}
}

// Options stop at the first positional: everything after "exec" belongs to
// the wrapped program. urfave/cli v2 never intersperses, so it needs no
// setting.

var execArgs = []string{"--verbose", "exec", "ls", "--color", "-la"}

func BenchmarkNoInterspersed_Snap(b *testing.B) {
	app := snap.New("wrap", "").DisallowInterspersedArgs()
	app.BoolFlag("verbose", "")
	app.StringSliceArg("command", "")
	app.Action(func(*snap.Context) error { return nil })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = app.RunWithArgs(context.Background(), execArgs)
	}
}

func BenchmarkNoInterspersed_Cobra(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := &cobra.Command{Use: "wrap", Args: cobra.ArbitraryArgs, Run: func(*cobra.Command, []string) {}}
		cmd.Flags().Bool("verbose", false, "")
		cmd.Flags().SetInterspersed(false)
		cmd.SetArgs(execArgs)
		_ = cmd.Execute()
	}
}

func BenchmarkNoInterspersed_Urfave(b *testing.B) {
	argv := append([]string{"wrap"}, execArgs...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app := &cli.App{
			Name:   "wrap",
			Flags:  []cli.Flag{&cli.BoolFlag{Name: "verbose"}},
			Action: func(*cli.Context) error { return nil },
		}
		_ = app.Run(argv)
	}
}

// cp-style positionals: a variadic SRC... followed by a fixed DST. cobra and
// urfave hand back a flat slice, so the split happens in the action.

var copyArgs = []string{"cp", "-r", "a.txt", "b.txt", "c.txt", "d.txt", "backup/"}

func BenchmarkVariadicTrailing_Snap(b *testing.B) {
	app := snap.New("fs", "")
	cp := app.Command("cp", "")
	cp.BoolFlag("recursive", "").Short('r')
	cp.StringSliceArg("src", "").Required()
	cp.StringArg("dst", "")
	cp.Action(func(ctx *snap.Context) error {
		_, _ = ctx.ArgStrings("src")
		_, _ = ctx.ArgString("dst")
		return nil
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = app.RunWithArgs(context.Background(), copyArgs)
	}
}

func BenchmarkVariadicTrailing_Cobra(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root := &cobra.Command{Use: "fs"}
		cp := &cobra.Command{
			Use:  "cp",
			Args: cobra.MinimumNArgs(2),
			Run: func(_ *cobra.Command, args []string) {
				_, _ = args[:len(args)-1], args[len(args)-1]
			},
		}
		cp.Flags().BoolP("recursive", "r", false, "")
		root.AddCommand(cp)
		root.SetArgs(copyArgs)
		_ = root.Execute()
	}
}

func BenchmarkVariadicTrailing_Urfave(b *testing.B) {
	argv := append([]string{"fs"}, copyArgs...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app := &cli.App{
			Name: "fs",
			Commands: []*cli.Command{{
				Name:  "cp",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}}},
				Action: func(c *cli.Context) error {
					args := c.Args().Slice()
					if len(args) < 2 {
						return cli.Exit("cp needs SRC... DST", 1)
					}
					_, _ = args[:len(args)-1], args[len(args)-1]
					return nil
				},
			}},
		}
		_ = app.Run(argv)
	}
}

// Options read from an argument file. snap expands @serve.args itself; the
// others get the same file split with shlex before parsing.

const serveArgFile = "--port 9000\n--host 'example.org'\n--tag a --tag \"b c\"\n"

var serveArgs = []string{"serve", "@serve.args", "--workers", "4"}

func BenchmarkArgFile_Snap(b *testing.B) {
	app := snap.New("srv", "").FileReader(snap.MapFileReader{"serve.args": serveArgFile})
	serve := app.Command("serve", "")
	serve.IntFlag("port", "")
	serve.StringFlag("host", "")
	serve.StringSliceFlag("tag", "")
	serve.IntFlag("workers", "")
	serve.Action(func(*snap.Context) error { return nil })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = app.RunWithArgs(context.Background(), serveArgs)
	}
}

func expandArgFile(b *testing.B, args []string) []string {
	b.Helper()
	words, err := shlex.Split(serveArgFile)
	if err != nil {
		b.Fatal(err)
	}
	out := make([]string, 0, len(args)+len(words))
	out = append(out, args[0])
	out = append(out, words...)
	return append(out, args[2:]...)
}

func BenchmarkArgFile_Cobra(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		argv := expandArgFile(b, serveArgs)
		root := &cobra.Command{Use: "srv"}
		serve := &cobra.Command{Use: "serve", Run: func(*cobra.Command, []string) {}}
		serve.Flags().Int("port", 0, "")
		serve.Flags().String("host", "", "")
		serve.Flags().StringSlice("tag", nil, "")
		serve.Flags().Int("workers", 0, "")
		root.AddCommand(serve)
		root.SetArgs(argv)
		_ = root.Execute()
	}
}

func BenchmarkArgFile_Urfave(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		argv := append([]string{"srv"}, expandArgFile(b, serveArgs)...)
		app := &cli.App{
			Name: "srv",
			Commands: []*cli.Command{{
				Name: "serve",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port"},
					&cli.StringFlag{Name: "host"},
					&cli.StringSliceFlag{Name: "tag"},
					&cli.IntFlag{Name: "workers"},
				},
				Action: func(*cli.Context) error { return nil },
			}},
		}
		_ = app.Run(argv)
	}
}
