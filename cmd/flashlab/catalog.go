package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mgomes/flashlab/flashcode"
	"github.com/mgomes/flashlab/importer"
	"github.com/mgomes/flashlab/store"
)

// readCatalog loads a catalog from any supported file, SQLite included.
func readCatalog(ctx context.Context, path string) (*flashcode.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no catalog configured", flashcode.ErrCatalogUnavailable)
	}
	if flashcode.CatalogFormat(path) == flashcode.FormatSQLite {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %w", flashcode.ErrCatalogUnavailable, err)
		}
		return store.LoadFile(ctx, path)
	}
	return flashcode.LoadCatalog(path)
}

// writeCatalog saves c to path in the format implied by its extension.
func writeCatalog(ctx context.Context, path string, c *flashcode.Catalog) error {
	if flashcode.CatalogFormat(path) == flashcode.FormatSQLite {
		return store.SaveFile(ctx, path, c)
	}
	return flashcode.SaveCatalog(path, c)
}

func runCatalogCommand(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("flashlab catalog: subcommand required (convert, import, info)")
	}
	switch args[0] {
	case "convert":
		if len(args) != 3 {
			return fmt.Errorf("usage: flashlab catalog convert <in> <out>")
		}
		c, err := readCatalog(a.ctx, args[1])
		if err != nil {
			return err
		}
		if err := writeCatalog(a.ctx, args[2], c); err != nil {
			return err
		}
		a.logger.Info("catalog converted", slog.String("from", args[1]), slog.String("to", args[2]), slog.Int("options", c.Len()))
		return nil

	case "import":
		if len(args) != 3 {
			return fmt.Errorf("usage: flashlab catalog import <table.cs> <out>")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("%w: %w", flashcode.ErrCatalogUnavailable, err)
		}
		defer f.Close()
		c, stats, err := importer.ParseWithStats(f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[1], err)
		}
		if err := writeCatalog(a.ctx, args[2], c); err != nil {
			return err
		}
		a.logger.Info("catalog imported",
			slog.String("table", args[1]),
			slog.String("out", args[2]),
			slog.Int("options", c.Len()),
			slog.Int("skipped", stats.Skipped),
			slog.Int("duplicates", stats.Duplicates))
		return nil

	case "info":
		path := a.cfg.Catalog
		if len(args) > 1 {
			path = args[1]
		}
		c, err := readCatalog(a.ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "catalog: %s\noptions: %d\nfingerprint: %016x\n", path, c.Len(), c.Fingerprint())
		return nil
	}
	return fmt.Errorf("flashlab catalog: unknown subcommand %q", args[0])
}
