package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Options configures a Scanner.
type Options struct {
	// TextExtensions are lowercase extensions, with leading dot, that mark a
	// description file.
	TextExtensions        []string
	DefaultLocation       string
	TruncateAtSecondColon bool
}

// Scanner turns a directory of vehicle folders into records.
type Scanner struct {
	opts   Options
	parser Parser
}

// NewScanner creates a scanner. Missing options fall back to ".txt" and ".md"
// descriptions and "Bulawayo" as the location.
func NewScanner(opts Options) *Scanner {
	if len(opts.TextExtensions) == 0 {
		opts.TextExtensions = []string{".txt", ".md"}
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = "Bulawayo"
	}
	return &Scanner{opts: opts, parser: Parser{TruncateAtSecondColon: opts.TruncateAtSecondColon}}
}

// Scan returns one record per immediate, non-hidden subdirectory of root in
// directory enumeration order. Slugs are allocated in that same order.
func (s *Scanner) Scan(ctx context.Context, root string) ([]vehicle.Record, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInventoryRootNotFound, root)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInventoryReadFailed, root, err)
	}

	slugs := NewSlugAllocator()
	records := make([]vehicle.Record, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !isDir(root, entry) {
			continue
		}

		rec, err := s.readFolder(root, name)
		if err != nil {
			return nil, err
		}
		rec.Slug = slugs.Allocate(rec.Name)
		slog.Debug("Scanned vehicle folder",
			logfields.Folder(name),
			logfields.Vehicle(rec.Name),
			logfields.Slug(rec.Slug),
			slog.Bool("sold", rec.Sold))
		records = append(records, rec)
	}
	return records, nil
}

func (s *Scanner) readFolder(root, folder string) (vehicle.Record, error) {
	dir := filepath.Join(root, folder)
	rec := vehicle.New(folder, s.opts.DefaultLocation)
	rec.Dir = dir

	entries, err := os.ReadDir(dir)
	if err != nil {
		return rec, fmt.Errorf("%w: %s: %w", ErrInventoryReadFailed, dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rec.Files = append(rec.Files, e.Name())
		if rec.DescriptionFile == "" && isDescription(e.Name(), s.opts.TextExtensions) {
			rec.DescriptionFile = e.Name()
		}
	}

	if rec.DescriptionFile == "" {
		slog.Debug("No description file, using defaults", logfields.Folder(folder))
		return rec, nil
	}

	path := filepath.Join(dir, rec.DescriptionFile)
	// #nosec G304 -- path is built from a directory listing under the inventory root
	content, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("%w: %s: %w", ErrInventoryReadFailed, path, err)
	}
	s.parser.Parse(content, &rec)
	return rec, nil
}

// isDir follows symlinks so linked vehicle folders are scanned too.
func isDir(root string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}
