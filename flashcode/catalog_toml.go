package flashcode

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

type tomlCatalog struct {
	Options map[string]optionFields `toml:"options"`
}

// ReadTOML decodes a catalog written as [options.NAME] tables with the same
// keys as the JSON form.
func ReadTOML(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	var f tomlCatalog
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogMalformed, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrCatalogMalformed, undecoded[0])
	}

	opts := make([]Option, 0, len(f.Options))
	for name, entry := range f.Options {
		opt, err := entry.option(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return NewCatalog(opts)
}

// WriteTOML writes c as [options.NAME] tables.
func WriteTOML(w io.Writer, c *Catalog) error {
	f := tomlCatalog{Options: make(map[string]optionFields, c.Len())}
	for _, o := range c.Options() {
		f.Options[o.Name] = optionFields{
			ByteOffset: &o.ByteOffset,
			BitOffset:  &o.BitOffset,
			BitSize:    &o.BitSize,
		}
	}
	return toml.NewEncoder(w).Encode(f)
}
