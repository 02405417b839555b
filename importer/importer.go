// Package importer extracts an option catalog from a vendor flash code table,
// a C# source file that declares each option as
//
//	new BitFieldLayout(AppResources.Name, byteOffset, bitOffset[, bitSize])
//
// Arguments may carry a TypeCode.Byte marker, which is ignored. Declarations
// with fewer than three arguments are skipped.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mgomes/flashlab/flashcode"
)

var layoutPattern = regexp.MustCompile(`new \w+FieldLayout\(([^)]+)\)`)

var resourcePrefixes = []string{"AcgResources.", "AppResources."}

const typeCodeByte = "TypeCode.Byte"

// Stats describes what Parse saw.
type Stats struct {
	Layouts    int // declarations matched
	Skipped    int // declarations with too few arguments
	Duplicates int // names declared more than once; the last one wins
}

// Parse reads r and returns the catalog it declares.
func Parse(r io.Reader) (*flashcode.Catalog, error) {
	c, _, err := ParseWithStats(r)
	return c, err
}

// ParseWithStats is Parse that also reports counts of what it matched.
func ParseWithStats(r io.Reader) (*flashcode.Catalog, Stats, error) {
	var stats Stats
	var opts []flashcode.Option
	index := make(map[string]int)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		m := layoutPattern.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		stats.Layouts++

		args := splitArguments(m[1])
		if len(args) < 3 {
			stats.Skipped++
			continue
		}

		opt, err := parseOption(args)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: line %d: %w", flashcode.ErrCatalogMalformed, line, err)
		}
		if i, ok := index[opt.Name]; ok {
			stats.Duplicates++
			opts[i] = opt
			continue
		}
		index[opt.Name] = len(opts)
		opts = append(opts, opt)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("%w: %w", flashcode.ErrCatalogUnavailable, err)
	}

	c, err := flashcode.NewCatalog(opts)
	if err != nil {
		return nil, stats, err
	}
	return c, stats, nil
}

func splitArguments(raw string) []string {
	for _, prefix := range resourcePrefixes {
		raw = strings.ReplaceAll(raw, prefix, "")
	}
	args := strings.Split(strings.TrimSpace(raw), ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	if i := slices.Index(args, typeCodeByte); i >= 0 {
		args = slices.Delete(args, i, i+1)
	}
	return args
}

func parseOption(args []string) (flashcode.Option, error) {
	opt := flashcode.Option{Name: args[0], BitSize: 1}
	fields := []*int{&opt.ByteOffset, &opt.BitOffset}
	if len(args) >= 4 {
		fields = append(fields, &opt.BitSize)
	}
	for i, dst := range fields {
		v, err := strconv.Atoi(args[i+1])
		if err != nil {
			return opt, fmt.Errorf("option %s: argument %d: %w", opt.Name, i+2, err)
		}
		*dst = v
	}
	return opt, nil
}
