// Package storage keeps dump files in a single directory. File names are the
// only persisted identity of a dump; everything else is decoded from them.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"db-sync/internal/errs"
	"db-sync/internal/filename"

	"github.com/klauspost/compress/zstd"
)

// File is a dump file on disk.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Info    filename.Info
}

// Dir is the storage directory for dump files.
type Dir struct {
	Path   string
	Logger *slog.Logger
}

// Open returns the storage directory at path, creating it if needed.
func Open(path string, logger *slog.Logger) (*Dir, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errs.Storage("open storage", err)
	}
	return &Dir{Path: path, Logger: logger}, nil
}

// ValidateName rejects anything that is not a plain dump file name.
func ValidateName(name string) error {
	if name == "" {
		return errs.Validation("validate", "file name is empty")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errs.Validation("validate", "%q is not a plain file name", name)
	}
	if !filename.IsDump(name) {
		return errs.Validation("validate", "%q is not a dump file (%s or %s%s)", name, filename.Ext, filename.Ext, filename.CompressedExt)
	}
	return nil
}

// List returns every dump file, newest first. Ties are broken by name so the
// order is stable.
func (d *Dir) List() ([]File, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.Storage("list", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !filename.IsDump(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errs.Storage("list", err)
		}
		files = append(files, d.file(fi))
	}

	slices.SortFunc(files, func(a, b File) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return files, nil
}

// Stat returns the dump file called name.
func (d *Dir) Stat(name string) (File, error) {
	if err := ValidateName(name); err != nil {
		return File{}, err
	}
	fi, err := os.Stat(filepath.Join(d.Path, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, errs.Validation("stat", "file %q not found", name)
		}
		return File{}, errs.Storage("stat", err)
	}
	return d.file(fi), nil
}

func (d *Dir) file(fi fs.FileInfo) File {
	return File{
		Name:    fi.Name(),
		Path:    filepath.Join(d.Path, fi.Name()),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Info:    filename.Decode(fi.Name()),
	}
}

// ReadAll returns the dump text of name, decompressing .zst files.
func (d *Dir) ReadAll(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	f, err := os.Open(filepath.Join(d.Path, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errs.Validation("read", "file %q not found", name)
		}
		return "", errs.Storage("read", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(name, filename.CompressedExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return "", errs.Storage("read", fmt.Errorf("failed to open zstd stream: %w", err))
		}
		defer dec.Close()
		r = dec
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errs.Storage("read", err)
	}
	if len(b) == 0 {
		return "", errs.Validation("read", "file %q is empty", name)
	}
	return string(b), nil
}

// Create opens name for writing. Data goes to a temporary file that replaces
// name only when Close succeeds, so readers never see a partial dump and an
// existing file of the same name is overwritten atomically.
func (d *Dir) Create(name string) (*Writer, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(d.Path, "."+name+".*.tmp")
	if err != nil {
		return nil, errs.Storage("create", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		d.Logger.Debug("chmod failed", "file", tmp.Name(), "err", err)
	}
	w := &Writer{tmp: tmp, dst: filepath.Join(d.Path, name), w: tmp}
	if strings.HasSuffix(name, filename.CompressedExt) {
		enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			w.Abort()
			return nil, errs.Storage("create", fmt.Errorf("failed to create zstd writer: %w", err))
		}
		w.enc = enc
		w.w = enc
	}
	return w, nil
}

// WriteFile stores text under name.
func (d *Dir) WriteFile(name, text string) (File, error) {
	w, err := d.Create(name)
	if err != nil {
		return File{}, err
	}
	if _, err := io.WriteString(w, text); err != nil {
		w.Abort()
		return File{}, errs.Storage("write", err)
	}
	if err := w.Close(); err != nil {
		return File{}, err
	}
	return d.Stat(name)
}

// Remove deletes name.
func (d *Dir) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.Path, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Validation("delete", "file %q not found", name)
		}
		return errs.Storage("delete", err)
	}
	d.Logger.Debug("file removed", "file", name)
	return nil
}

// Writer writes one dump file; see Dir.Create.
type Writer struct {
	tmp    *os.File
	enc    *zstd.Encoder
	w      io.Writer
	dst    string
	failed bool
}

func (a *Writer) Write(p []byte) (int, error) {
	n, err := a.w.Write(p)
	if err != nil {
		a.failed = true
	}
	return n, err
}

// Close finishes the file and renames it into place. After a failed Write
// the temporary file is discarded instead.
func (a *Writer) Close() error {
	if a.failed {
		a.Abort()
		return errs.Storage("write", fmt.Errorf("incomplete write to %s", filepath.Base(a.dst)))
	}
	if a.enc != nil {
		if err := a.enc.Close(); err != nil {
			a.Abort()
			return errs.Storage("write", err)
		}
	}
	if err := a.tmp.Close(); err != nil {
		os.Remove(a.tmp.Name())
		return errs.Storage("write", err)
	}
	if err := os.Rename(a.tmp.Name(), a.dst); err != nil {
		os.Remove(a.tmp.Name())
		return errs.Storage("write", err)
	}
	return nil
}

// Abort discards everything written so far.
func (a *Writer) Abort() {
	if a.enc != nil {
		a.enc.Close()
	}
	a.tmp.Close()
	os.Remove(a.tmp.Name())
}
