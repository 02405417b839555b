package flashcode

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Option is a named bit range in the payload.
type Option struct {
	Name       string
	ByteOffset int // 1-based payload byte
	BitOffset  int // highest bit, 0 is the least significant
	BitSize    int
}

// Range returns the bit coordinates of the option.
func (o Option) Range() Range {
	return Range{ByteOffset: o.ByteOffset, BitOffset: o.BitOffset, BitSize: o.BitSize}
}

// Catalog is an immutable set of options kept in presentation order:
// byte offset, bit offset and bit size ascending, ties broken by name.
type Catalog struct {
	options []Option
	index   map[string]int
}

// NewCatalog validates opts and returns them as a Catalog. Coordinates are
// only checked for sign here; whether a range fits a byte is checked when
// the option is used.
func NewCatalog(opts []Option) (*Catalog, error) {
	c := &Catalog{
		options: slices.Clone(opts),
		index:   make(map[string]int, len(opts)),
	}
	for _, o := range c.options {
		switch {
		case o.Name == "":
			return nil, fmt.Errorf("%w: option with empty name", ErrCatalogMalformed)
		case o.ByteOffset < 1:
			return nil, fmt.Errorf("%w: option %s: byte offset %d must be at least 1", ErrCatalogMalformed, o.Name, o.ByteOffset)
		case o.BitOffset < 0:
			return nil, fmt.Errorf("%w: option %s: negative bit offset %d", ErrCatalogMalformed, o.Name, o.BitOffset)
		case o.BitSize < 1:
			return nil, fmt.Errorf("%w: option %s: bit size %d must be at least 1", ErrCatalogMalformed, o.Name, o.BitSize)
		}
		if _, dup := c.index[o.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate option %s", ErrCatalogMalformed, o.Name)
		}
		c.index[o.Name] = 0
	}

	slices.SortFunc(c.options, compareOptions)
	for i, o := range c.options {
		c.index[o.Name] = i
	}
	return c, nil
}

// MustNewCatalog is NewCatalog that panics on error. Meant for tests and
// static tables.
func MustNewCatalog(opts []Option) *Catalog {
	c, err := NewCatalog(opts)
	if err != nil {
		panic(err)
	}
	return c
}

func compareOptions(a, b Option) int {
	return cmp.Or(
		cmp.Compare(a.ByteOffset, b.ByteOffset),
		cmp.Compare(a.BitOffset, b.BitOffset),
		cmp.Compare(a.BitSize, b.BitSize),
		cmp.Compare(a.Name, b.Name),
	)
}

// Len returns the number of options. A nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.options)
}

// Lookup returns the option called name.
func (c *Catalog) Lookup(name string) (Option, bool) {
	if c == nil {
		return Option{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Option{}, false
	}
	return c.options[i], true
}

// Options returns a copy of the options in presentation order.
func (c *Catalog) Options() []Option {
	if c == nil {
		return nil
	}
	return slices.Clone(c.options)
}

// Names returns the option names in presentation order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.options))
	for i, o := range c.options {
		names[i] = o.Name
	}
	return names
}

// Fingerprint hashes the ordered catalog contents. Two catalogs with the same
// options have the same fingerprint regardless of source format.
func (c *Catalog) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, o := range c.Options() {
		h.WriteString(o.Name)
		buf[0] = 0
		h.Write(buf[:1])
		for _, v := range []int{o.ByteOffset, o.BitOffset, o.BitSize} {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}
