package flashcode

import (
	"fmt"
	"strings"
)

// Code is a payload together with the catalog used to resolve option names.
// A Code is not safe for concurrent use; callers serialize access.
type Code struct {
	payload Payload
	catalog *Catalog
}

// New returns the all-zero code. A nil catalog behaves as an empty one.
func New(catalog *Catalog) *Code {
	return &Code{catalog: catalog}
}

// Parse decodes s into a new Code. See Decode.
func Parse(s string, catalog *Catalog) (*Code, error) {
	p, err := Decode(s)
	if err != nil {
		return nil, err
	}
	return &Code{payload: p, catalog: catalog}, nil
}

// ParseStrict is Parse with check digit verification. See DecodeStrict.
func ParseStrict(s string, catalog *Catalog) (*Code, error) {
	p, err := DecodeStrict(s)
	if err != nil {
		return nil, err
	}
	return &Code{payload: p, catalog: catalog}, nil
}

// FromPayload wraps p. It fails with ErrInvalidCode when a slot is outside
// the alphabet.
func FromPayload(p Payload, catalog *Catalog) (*Code, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: payload holds values outside the alphabet", ErrInvalidCode)
	}
	return &Code{payload: p, catalog: catalog}, nil
}

// Payload returns a copy of the payload.
func (c *Code) Payload() Payload {
	return c.payload
}

// Catalog returns the catalog the code resolves option names against.
func (c *Code) Catalog() *Catalog {
	return c.catalog
}

// WithCatalog returns a copy of c that resolves names against catalog.
func (c *Code) WithCatalog(catalog *Catalog) *Code {
	return &Code{payload: c.payload, catalog: catalog}
}

// String returns the encoded code.
func (c *Code) String() string {
	return c.payload.String()
}

// BitsString renders every symbol of the encoded code as its 8-bit value,
// least significant bit first. Dashes are kept.
func (c *Code) BitsString() string {
	s := c.String()
	tokens := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			tokens = append(tokens, "-")
			continue
		}
		v, _ := ValueOf(s[i])
		tokens = append(tokens, reverseBits(byte(v)))
	}
	return strings.Join(tokens, " ")
}

func reverseBits(v byte) string {
	var b [8]byte
	for bit := 0; bit < 8; bit++ {
		b[bit] = '0' + (v>>bit)&1
	}
	return string(b[:])
}

// SetBits sets the bits [bitOffset-bitSize+1, bitOffset] of the 1-based
// payload byte byteOffset. It fails with ErrInvalidRange, leaving the code
// unchanged, when the range is invalid or the byte would leave the alphabet.
func (c *Code) SetBits(byteOffset, bitOffset, bitSize int) error {
	return setBits(&c.payload, Range{byteOffset, bitOffset, bitSize})
}

// UnsetBits clears the addressed bits.
func (c *Code) UnsetBits(byteOffset, bitOffset, bitSize int) error {
	return unsetBits(&c.payload, Range{byteOffset, bitOffset, bitSize})
}

// CheckBits reports whether every addressed bit is set.
func (c *Code) CheckBits(byteOffset, bitOffset, bitSize int) (bool, error) {
	return checkBits(&c.payload, Range{byteOffset, bitOffset, bitSize})
}

func (c *Code) lookup(name string) (Option, error) {
	opt, ok := c.catalog.Lookup(name)
	if !ok {
		return Option{}, fmt.Errorf("%w: %s", ErrOptionNotFound, name)
	}
	return opt, nil
}

// AddOption enables the named option.
func (c *Code) AddOption(name string) error {
	opt, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := setBits(&c.payload, opt.Range()); err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	return nil
}

// RemoveOption disables the named option. Removing an option that is not
// enabled is not an error.
func (c *Code) RemoveOption(name string) error {
	opt, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := unsetBits(&c.payload, opt.Range()); err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	return nil
}

// HasOption reports whether the named option is enabled.
func (c *Code) HasOption(name string) (bool, error) {
	opt, err := c.lookup(name)
	if err != nil {
		return false, err
	}
	on, err := checkBits(&c.payload, opt.Range())
	if err != nil {
		return false, fmt.Errorf("option %s: %w", name, err)
	}
	return on, nil
}

// ApplyOptions enables add and then disables remove. Either every change is
// applied or, on the first error, none is.
func (c *Code) ApplyOptions(add, remove []string) error {
	saved := c.payload
	for _, name := range add {
		if err := c.AddOption(name); err != nil {
			c.payload = saved
			return err
		}
	}
	for _, name := range remove {
		if err := c.RemoveOption(name); err != nil {
			c.payload = saved
			return err
		}
	}
	return nil
}

// EnabledOptions returns the names of the options whose bits are all set, in
// catalog order. Options with an invalid range are never enabled.
func (c *Code) EnabledOptions() []string {
	var names []string
	for _, opt := range c.catalog.Options() {
		if on, err := checkBits(&c.payload, opt.Range()); err == nil && on {
			names = append(names, opt.Name)
		}
	}
	return names
}

// AvailableOptions returns the catalog options that are not enabled, in
// catalog order.
func (c *Code) AvailableOptions() []string {
	var names []string
	for _, opt := range c.catalog.Options() {
		if on, err := checkBits(&c.payload, opt.Range()); err != nil || !on {
			names = append(names, opt.Name)
		}
	}
	return names
}
