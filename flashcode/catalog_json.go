package flashcode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// optionFields is the per-option record shared by the JSON and TOML forms.
type optionFields struct {
	ByteOffset *int `json:"byte_offset" toml:"byte_offset"`
	BitOffset  *int `json:"bit_offset" toml:"bit_offset"`
	BitSize    *int `json:"bit_size,omitempty" toml:"bit_size,omitempty"`
}

// ReadJSON decodes a catalog from an object mapping option names to
// {"byte_offset", "bit_offset", "bit_size"}. A missing bit_size means 1.
func ReadJSON(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: catalog must be a JSON object", ErrCatalogMalformed)
	}

	opts := make([]Option, 0, len(raw))
	for name, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		var entry optionFields
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("%w: option %s: %w", ErrCatalogMalformed, name, err)
		}
		opt, err := entry.option(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return NewCatalog(opts)
}

func (e optionFields) option(name string) (Option, error) {
	if e.ByteOffset == nil || e.BitOffset == nil {
		return Option{}, fmt.Errorf("%w: option %s: byte_offset and bit_offset are required", ErrCatalogMalformed, name)
	}
	opt := Option{Name: name, ByteOffset: *e.ByteOffset, BitOffset: *e.BitOffset, BitSize: 1}
	if e.BitSize != nil {
		opt.BitSize = *e.BitSize
	}
	return opt, nil
}

// WriteJSON writes c as an indented JSON object in presentation order.
func WriteJSON(w io.Writer, c *Catalog) error {
	bw := bufio.NewWriter(w)
	opts := c.Options()
	if len(opts) == 0 {
		bw.WriteString("{}\n")
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, o := range opts {
		name, err := json.Marshal(o.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "    %s: {\n        \"byte_offset\": %d,\n        \"bit_offset\": %d,\n        \"bit_size\": %d\n    }",
			name, o.ByteOffset, o.BitOffset, o.BitSize)
		if i < len(opts)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("}\n")
	return bw.Flush()
}
