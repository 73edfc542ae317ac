//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	"github.com/dzonerzy/snapargv/internal/fuzzy"
	"github.com/dzonerzy/snapargv/internal/names"
)

// Category: suggestions

var optionNames = []string{
	"--help", "--version", "--verbose", "--config", "--output", "--input",
	"--force", "--debug", "--port", "--host", "--timeout", "--retry",
}

func BenchmarkMatcher_Rank(b *testing.B) {
	matcher := fuzzy.NewMatcher(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matcher.Rank("--hep", optionNames)
	}
}

func BenchmarkSuggest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		fuzzy.Suggest("--verbos", optionNames, 2, 3)
	}
}

func BenchmarkNameIndex_WithPrefix(b *testing.B) {
	var ix names.Index
	for _, name := range optionNames {
		ix.Add(name)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.WithPrefix("--ver")
	}
}
