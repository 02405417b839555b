package flashcode

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

type cborOption struct {
	Name       string `cbor:"1,keyasint"`
	ByteOffset int    `cbor:"2,keyasint"`
	BitOffset  int    `cbor:"3,keyasint"`
	BitSize    int    `cbor:"4,keyasint"`
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("flashcode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("flashcode: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// ReadCBOR decodes a catalog stored as a CBOR array of option records.
func ReadCBOR(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	var records []cborOption
	if err := cborDecMode.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogMalformed, err)
	}
	opts := make([]Option, len(records))
	for i, rec := range records {
		opts[i] = Option(rec)
	}
	return NewCatalog(opts)
}

// WriteCBOR writes c in canonical CBOR, so equal catalogs give equal bytes.
func WriteCBOR(w io.Writer, c *Catalog) error {
	opts := c.Options()
	records := make([]cborOption, len(opts))
	for i, o := range opts {
		records[i] = cborOption(o)
	}
	data, err := cborEncMode.Marshal(records)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
