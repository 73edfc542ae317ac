package valuesource

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/go-ini/ini"

	"github.com/dzonerzy/snapargv/snap"
)

// INISource reads option values from an INI file. Root options live in the
// unnamed section, subcommand options in a section named after the command
// path ("[deploy]", "[deploy.prod]"). A key repeated in one section gives one
// invocation per line.
type INISource struct {
	path string
	opts options

	once sync.Once
	file *ini.File
	err  error
}

// INI creates an INI value source.
func INI(path string, opts ...Option) *INISource {
	return &INISource{path: path, opts: buildOptions(opts)}
}

func (s *INISource) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !s.opts.required {
			return
		}
		s.err = readError(s.path, err)
		return
	}
	file, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, data)
	if err != nil {
		s.err = formatError(s.path, err)
		return
	}
	s.file = file
}

// GetValues implements snap.ValueSource.
func (s *INISource) GetValues(ctx *snap.Context, flag *snap.Flag) ([]snap.Invocation, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	if s.file == nil {
		return nil, nil
	}

	keys := snap.KeyPath(ctx, flag)
	section := ini.DefaultSection
	if len(keys) > 1 {
		section = strings.Join(keys[:len(keys)-1], ".")
	}
	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, nil
	}
	key, err := sec.GetKey(keys[len(keys)-1])
	if err != nil {
		return nil, nil
	}

	values := key.ValueWithShadows()
	out := make([]snap.Invocation, 0, len(values))
	for _, v := range values {
		out = append(out, snap.ValueInvocation(flag, v))
	}
	return out, nil
}
