package series

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies how a source is encoded on disk.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatCSVGzip
	FormatCSVZstd
	FormatXLSX
)

var formatSuffixes = []struct {
	suffix string
	format Format
}{
	// Longest suffixes first so ".csv.gz" wins over ".gz".
	{".csv.gz", FormatCSVGzip},
	{".csv.zst", FormatCSVZstd},
	{".csv", FormatCSV},
	{".xlsx", FormatXLSX},
}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatCSVGzip:
		return "csv.gz"
	case FormatCSVZstd:
		return "csv.zst"
	case FormatXLSX:
		return "xlsx"
	}
	return "unknown"
}

// DetectFormat returns the format of a file name and its stem.
func DetectFormat(filename string) (Format, string) {
	base := filepath.Base(filename)
	lower := strings.ToLower(base)
	for _, fx := range formatSuffixes {
		if strings.HasSuffix(lower, fx.suffix) {
			return fx.format, base[:len(base)-len(fx.suffix)]
		}
	}
	return FormatUnknown, strings.TrimSuffix(base, filepath.Ext(base))
}

// Source is one entity's data, not yet read.
type Source struct {
	Name   string
	Path   string
	Format Format
	open   func() (io.ReadCloser, error)
}

// Open returns the raw (still encoded) source stream.
func (s Source) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, fmt.Errorf("source %q has no opener", s.Name)
	}
	return s.open()
}

// Catalog enumerates the available entity sources.
type Catalog interface {
	Sources(ctx context.Context) ([]Source, error)
}

// SortSources orders sources by name, then path. The aggregator relies on
// this order to decide which entity is "first".
func SortSources(srcs []Source) {
	sort.SliceStable(srcs, func(i, j int) bool {
		if srcs[i].Name != srcs[j].Name {
			return srcs[i].Name < srcs[j].Name
		}
		return srcs[i].Path < srcs[j].Path
	})
}

// DirCatalog lists every recognized data file under a directory tree.
type DirCatalog struct {
	dir    string
	logger *slog.Logger
}

// NewDirCatalog creates a catalog rooted at dir.
func NewDirCatalog(dir string, logger *slog.Logger) *DirCatalog {
	return &DirCatalog{dir: dir, logger: logger}
}

// Sources walks the directory and returns sources sorted by name.
// Files with an unrecognized extension are skipped.
func (c *DirCatalog) Sources(ctx context.Context) ([]Source, error) {
	var srcs []Source
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, stem := DetectFormat(path)
		if format == FormatUnknown {
			c.logger.Debug("skipping unrecognized data file", "path", path)
			return nil
		}
		p := path
		srcs = append(srcs, Source{
			Name:   stem,
			Path:   p,
			Format: format,
			open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing data dir %s: %w", c.dir, err)
	}

	SortSources(srcs)
	return srcs, nil
}

// MemCatalog serves sources held in memory.
type MemCatalog struct {
	srcs []Source
}

// NewMemCatalog creates an empty in-memory catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{}
}

// Add registers data under filename; the format and entity name are derived
// from the file name the same way DirCatalog does.
func (c *MemCatalog) Add(filename string, data []byte) {
	format, stem := DetectFormat(filename)
	c.srcs = append(c.srcs, Source{
		Name:   stem,
		Path:   filename,
		Format: format,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	})
}

// Sources returns a sorted copy of the registered sources.
func (c *MemCatalog) Sources(ctx context.Context) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Source, len(c.srcs))
	copy(out, c.srcs)
	SortSources(out)
	return out, nil
}

// Load reads and decodes one source. Every failure is a *SourceReadError.
func Load(src Source) (Series, error) {
	rc, err := src.Open()
	if err != nil {
		return Series{}, &SourceReadError{Entity: src.Name, Path: src.Path, Err: err}
	}
	defer rc.Close()

	s, err := decode(src, rc)
	if err != nil {
		var serr *SourceReadError
		if errors.As(err, &serr) {
			serr.Path = src.Path
			return Series{}, serr
		}
		return Series{}, &SourceReadError{Entity: src.Name, Path: src.Path, Err: err}
	}
	return s, nil
}

func decode(src Source, r io.Reader) (Series, error) {
	switch src.Format {
	case FormatCSV:
		return Parse(r, src.Name)
	case FormatCSVGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return Series{}, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		return Parse(zr, src.Name)
	case FormatCSVZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return Series{}, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		return Parse(zr, src.Name)
	case FormatXLSX:
		return ParseWorkbook(r, src.Name)
	}
	return Series{}, fmt.Errorf("unsupported format %s", src.Format)
}
