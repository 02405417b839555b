package flashcode

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

const sampleJSON = `{
    "TEST": {"byte_offset": 1, "bit_offset": 2, "bit_size": 1},
    "ZETA": {"byte_offset": 1, "bit_offset": 0},
    "ALPHA": {"byte_offset": 1, "bit_offset": 0, "bit_size": 1},
    "WIDE": {"byte_offset": 3, "bit_offset": 5, "bit_size": 3}
}`

func TestNewCatalogOrdersByCoordinates(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got, want := c.Names(), []string{"ALPHA", "ZETA", "TEST", "WIDE"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	zeta, ok := c.Lookup("ZETA")
	if !ok || zeta.BitSize != 1 {
		t.Fatalf("expected default bit size 1, got %+v", zeta)
	}
	if _, ok := c.Lookup("MISSING"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestNewCatalogRejectsMalformedEntries(t *testing.T) {
	cases := [][]Option{
		{{Name: "", ByteOffset: 1, BitOffset: 0, BitSize: 1}},
		{{Name: "A", ByteOffset: 0, BitOffset: 0, BitSize: 1}},
		{{Name: "A", ByteOffset: 1, BitOffset: -1, BitSize: 1}},
		{{Name: "A", ByteOffset: 1, BitOffset: 0, BitSize: 0}},
		{
			{Name: "A", ByteOffset: 1, BitOffset: 0, BitSize: 1},
			{Name: "A", ByteOffset: 2, BitOffset: 0, BitSize: 1},
		},
	}
	for _, opts := range cases {
		if _, err := NewCatalog(opts); !errors.Is(err, ErrCatalogMalformed) {
			t.Fatalf("%+v: expected ErrCatalogMalformed, got %v", opts, err)
		}
	}
}

func TestCatalogOptionsReturnsCopy(t *testing.T) {
	c := MustNewCatalog([]Option{{Name: "A", ByteOffset: 1, BitOffset: 0, BitSize: 1}})
	opts := c.Options()
	opts[0].ByteOffset = 9
	if o, _ := c.Lookup("A"); o.ByteOffset != 1 {
		t.Fatalf("catalog mutated through Options copy")
	}
}

func TestReadJSONRejectsMalformed(t *testing.T) {
	cases := []string{
		`[]`,
		`{"A": {"bit_offset": 1}}`,
		`{"A": {"byte_offset": 1}}`,
		`{"A": {"byte_offset": 1.5, "bit_offset": 0}}`,
		`{"A": {"byte_offset": 1, "bit_offset": 0, "colour": "red"}}`,
		`{"A": {"byte_offset": 0, "bit_offset": 0}}`,
		`{"A": `,
		`null`,
	}
	for _, input := range cases {
		if _, err := ReadJSON(strings.NewReader(input)); !errors.Is(err, ErrCatalogMalformed) {
			t.Fatalf("%s: expected ErrCatalogMalformed, got %v", input, err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadersReportUnavailableSource(t *testing.T) {
	readers := map[string]func(io.Reader) (*Catalog, error){
		"json": ReadJSON,
		"toml": ReadTOML,
		"cbor": ReadCBOR,
	}
	for name, read := range readers {
		if _, err := read(failingReader{}); !errors.Is(err, ErrCatalogUnavailable) {
			t.Fatalf("%s: expected ErrCatalogUnavailable, got %v", name, err)
		}
	}
}

func TestWriteJSONKeepsPresentationOrder(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, c); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	if strings.Index(out, `"ALPHA"`) > strings.Index(out, `"WIDE"`) {
		t.Fatalf("expected catalog order in output:\n%s", out)
	}
	again, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if again.Fingerprint() != c.Fingerprint() {
		t.Fatalf("catalog changed across JSON write/read")
	}
}

func TestTOMLCatalog(t *testing.T) {
	input := `
[options.TEST]
byte_offset = 1
bit_offset = 2
bit_size = 1

[options."NAV LEVEL"]
byte_offset = 5
bit_offset = 3
bit_size = 2

[options.SHORT]
byte_offset = 2
bit_offset = 0
`
	c, err := ReadTOML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got, want := c.Names(), []string{"TEST", "SHORT", "NAV LEVEL"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	var buf bytes.Buffer
	if err := WriteTOML(&buf, c); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	again, err := ReadTOML(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if again.Fingerprint() != c.Fingerprint() {
		t.Fatalf("catalog changed across TOML write/read")
	}
}

func TestReadTOMLRejectsUnknownKeys(t *testing.T) {
	input := "[options.A]\nbyte_offset = 1\nbit_offset = 0\nwidth = 2\n"
	if _, err := ReadTOML(strings.NewReader(input)); !errors.Is(err, ErrCatalogMalformed) {
		t.Fatalf("expected ErrCatalogMalformed, got %v", err)
	}
}

func TestCBORCatalogIsCanonical(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var first, second bytes.Buffer
	if err := WriteCBOR(&first, c); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteCBOR(&second, c); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("expected deterministic CBOR output")
	}
	again, err := ReadCBOR(&first)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	if !slices.Equal(again.Options(), c.Options()) {
		t.Fatalf("expected %v, got %v", c.Options(), again.Options())
	}
	if _, err := ReadCBOR(strings.NewReader("not cbor")); !errors.Is(err, ErrCatalogMalformed) {
		t.Fatalf("expected ErrCatalogMalformed, got %v", err)
	}
}

func TestReadCBORRejectsUnknownKeys(t *testing.T) {
	data, err := cbor.Marshal([]map[int]any{
		{1: "A", 2: 1, 3: 0, 4: 1, 9: "extra"},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if _, err := ReadCBOR(bytes.NewReader(data)); !errors.Is(err, ErrCatalogMalformed) {
		t.Fatalf("expected ErrCatalogMalformed, got %v", err)
	}
}

func TestLoadAndSaveCatalogFiles(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	dir := t.TempDir()
	for _, name := range []string{"options.json", "options.toml", "options.cbor"} {
		path := filepath.Join(dir, name)
		if err := SaveCatalog(path, c); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
		loaded, err := LoadCatalog(path)
		if err != nil {
			t.Fatalf("load %s failed: %v", name, err)
		}
		if loaded.Fingerprint() != c.Fingerprint() {
			t.Fatalf("%s: fingerprint mismatch", name)
		}
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCatalog(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if _, err := LoadCatalog(filepath.Join(dir, "options.yaml")); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := LoadCatalog(bad); !errors.Is(err, ErrCatalogMalformed) {
		t.Fatalf("expected ErrCatalogMalformed, got %v", err)
	}
}

func TestFingerprintDependsOnContents(t *testing.T) {
	a := MustNewCatalog([]Option{{Name: "A", ByteOffset: 1, BitOffset: 0, BitSize: 1}})
	b := MustNewCatalog([]Option{{Name: "A", ByteOffset: 1, BitOffset: 1, BitSize: 1}})
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("expected different fingerprints")
	}
	var empty *Catalog
	if empty.Len() != 0 || empty.Names() != nil {
		t.Fatalf("nil catalog should be empty")
	}
}
