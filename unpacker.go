package demtile

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// DefaultArchiveExt is the default extension of archives to unpack.
const DefaultArchiveExt = ".zip"

// ErrUnsafePath is returned when an archive entry would be extracted outside
// the working directory.
var ErrUnsafePath = errors.New("unsafe path")

// An ArchiveResult is the result of extracting a single archive.
type ArchiveResult struct {
	Name  string
	Files int
	Bytes int64
	Err   error
}

// An UnpackReport summarizes a call to [Unpacker.Unpack].
type UnpackReport struct {
	Archives []ArchiveResult
	Organize *OrganizeReport // Nil if there were no archives.
}

// Extracted returns the number of archives extracted without error.
func (r *UnpackReport) Extracted() int {
	n := 0
	for _, archive := range r.Archives {
		if archive.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the archives that could not be extracted.
func (r *UnpackReport) Failed() []ArchiveResult {
	var failed []ArchiveResult
	for _, archive := range r.Archives {
		if archive.Err != nil {
			failed = append(failed, archive)
		}
	}
	return failed
}

// Bytes returns the total number of bytes extracted.
func (r *UnpackReport) Bytes() int64 {
	var n int64
	for _, archive := range r.Archives {
		n += archive.Bytes
	}
	return n
}

// An Unpacker extracts archives from a source filesystem into a working
// filesystem and then organizes the working filesystem.
type Unpacker struct {
	src         billy.Filesystem
	dst         billy.Filesystem
	organizer   *Organizer
	archiveExt  string
	logger      *slog.Logger
	archiveFunc func(ArchiveResult)
}

// An UnpackerOption sets an option on an Unpacker.
type UnpackerOption func(*Unpacker)

// NewUnpacker returns a new Unpacker. organizer should operate on dst.
func NewUnpacker(src, dst billy.Filesystem, organizer *Organizer, options ...UnpackerOption) *Unpacker {
	u := &Unpacker{
		src:        src,
		dst:        dst,
		organizer:  organizer,
		archiveExt: DefaultArchiveExt,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(u)
	}
	return u
}

func WithArchiveExt(archiveExt string) UnpackerOption {
	return func(u *Unpacker) {
		u.archiveExt = archiveExt
	}
}

// WithArchiveFunc sets a function that is called after each archive is
// extracted, whether or not extraction succeeded.
func WithArchiveFunc(archiveFunc func(ArchiveResult)) UnpackerOption {
	return func(u *Unpacker) {
		u.archiveFunc = archiveFunc
	}
}

func WithUnpackerLogger(logger *slog.Logger) UnpackerOption {
	return func(u *Unpacker) {
		u.logger = logger
	}
}

// Archives returns the names of the archives in the root of u's source
// filesystem, sorted. Hidden files are ignored.
func (u *Unpacker) Archives() ([]string, error) {
	infos, err := u.src.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, u.archiveExt) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Unpack extracts every archive and then organizes the working directory.
// A failure to extract one archive is recorded in the report and does not
// stop the others. If there are no archives then nothing is organized.
func (u *Unpacker) Unpack(ctx context.Context) (*UnpackReport, error) {
	names, err := u.Archives()
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}

	report := &UnpackReport{}
	if len(names) == 0 {
		u.logger.Info("no archives found", "ext", u.archiveExt)
		return report, nil
	}
	u.logger.Info("found archives", "count", len(names))

	if err := u.dst.MkdirAll(".", 0o755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := u.Extract(name)
		if result.Err != nil {
			u.logger.Warn("error extracting archive", "archive", name, "err", result.Err)
			archiveFailures.Inc()
		} else {
			u.logger.Info("extracted archive", "archive", name, "files", result.Files, "bytes", result.Bytes)
			archivesExtracted.Inc()
		}
		report.Archives = append(report.Archives, result)
		if u.archiveFunc != nil {
			u.archiveFunc(result)
		}
	}

	report.Organize, err = u.organizer.Organize(ctx)
	if err != nil {
		return nil, fmt.Errorf("organize: %w", err)
	}
	return report, nil
}

// Extract extracts the archive name into the root of u's working filesystem,
// overwriting existing files.
func (u *Unpacker) Extract(name string) ArchiveResult {
	result := ArchiveResult{
		Name: name,
	}
	result.Files, result.Bytes, result.Err = u.extract(name)
	bytesExtracted.Add(float64(result.Bytes))
	return result
}

func (u *Unpacker) extract(name string) (int, int64, error) {
	info, err := u.src.Stat(name)
	if err != nil {
		return 0, 0, err
	}
	file, err := u.src.Open(name)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	zipReader, err := zip.NewReader(file, info.Size())
	switch {
	case errors.Is(err, zip.ErrInsecurePath):
		// Entries are checked individually by extractFile.
	case err != nil:
		return 0, 0, err
	}

	files := 0
	var written int64
	for _, zipFile := range zipReader.File {
		n, err := u.extractFile(zipFile)
		written += n
		if err != nil {
			return files, written, fmt.Errorf("%s: %w", zipFile.Name, err)
		}
		if !zipFile.FileInfo().IsDir() {
			files++
		}
	}
	return files, written, nil
}

// extractFile extracts a single archive entry.
func (u *Unpacker) extractFile(zipFile *zip.File) (int64, error) {
	path := filepath.FromSlash(zipFile.Name)
	if !filepath.IsLocal(path) {
		return 0, ErrUnsafePath
	}

	if zipFile.FileInfo().IsDir() {
		return 0, u.dst.MkdirAll(path, 0o755)
	}
	if err := u.dst.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	r, err := zipFile.Open()
	if err != nil {
		return 0, err
	}
	defer r.Close()

	w, err := u.dst.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return n, err
	}
	return n, w.Close()
}
