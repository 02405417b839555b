package flashcode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Catalog file formats recognised by extension.
const (
	FormatJSON   = "json"
	FormatTOML   = "toml"
	FormatCBOR   = "cbor"
	FormatSQLite = "sqlite"
)

// CatalogFormat returns the catalog format implied by the extension of path,
// or "" when it is not recognised. SQLite catalogs are not read by this
// package; see the store package.
func CatalogFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	case ".cbor":
		return FormatCBOR
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return ""
}

// LoadCatalog reads a JSON, TOML or CBOR catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	read, err := catalogReader(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer f.Close()

	c, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// SaveCatalog writes c to path in the format implied by its extension.
func SaveCatalog(path string, c *Catalog) error {
	var write func(io.Writer, *Catalog) error
	switch CatalogFormat(path) {
	case FormatJSON:
		write = WriteJSON
	case FormatTOML:
		write = WriteTOML
	case FormatCBOR:
		write = WriteCBOR
	default:
		return fmt.Errorf("unsupported catalog format for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, c); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func catalogReader(path string) (func(io.Reader) (*Catalog, error), error) {
	switch CatalogFormat(path) {
	case FormatJSON:
		return ReadJSON, nil
	case FormatTOML:
		return ReadTOML, nil
	case FormatCBOR:
		return ReadCBOR, nil
	}
	return nil, fmt.Errorf("%w: unsupported catalog format for %s", ErrCatalogUnavailable, path)
}
