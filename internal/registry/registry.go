// Package registry enumerates dump files and detects changes between polls.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"db-sync/internal/kvstore"
	"db-sync/internal/storage"
)

// BaselineKey is the store key holding the identities seen by the last poll.
const BaselineKey = "stored_files"

// Lister enumerates dump files, newest first.
type Lister interface {
	List() ([]storage.File, error)
}

// Identity is "name|mtime|size", with mtime in Unix seconds. Any rewrite of a
// file that changes its size or mtime yields a new identity.
func Identity(f storage.File) string {
	return f.Name + "|" + strconv.FormatInt(f.ModTime.Unix(), 10) + "|" + strconv.FormatInt(f.Size, 10)
}

// Result is the outcome of one poll.
type Result struct {
	Changed bool
	First   bool
	Added   []string // identities not in the previous baseline
	Removed []string // baseline identities no longer present
	Files   []storage.File
}

// Dumps returns the non-backup files of the poll.
func (r *Result) Dumps() []storage.File {
	return filter(r.Files, false)
}

// Backups returns the backup files of the poll.
func (r *Result) Backups() []storage.File {
	return filter(r.Files, true)
}

func filter(files []storage.File, backup bool) []storage.File {
	var out []storage.File
	for _, f := range files {
		if f.Info.IsBackup == backup {
			out = append(out, f)
		}
	}
	return out
}

// Registry compares the storage directory against the stored baseline.
type Registry struct {
	Files  Lister
	Store  kvstore.Store
	Logger *slog.Logger
}

// New creates a Registry. A nil logger discards output.
func New(files Lister, store kvstore.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{Files: files, Store: store, Logger: logger}
}

// Poll lists the current files, diffs their identities against the baseline
// and stores the current set as the new baseline. If listing fails the
// baseline is left untouched.
func (r *Registry) Poll(ctx context.Context) (*Result, error) {
	files, err := r.Files.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list dump files: %w", err)
	}

	current := make([]string, len(files))
	for i, f := range files {
		current[i] = Identity(f)
	}
	slices.Sort(current)

	var stored []string
	if _, err := kvstore.GetJSON(ctx, r.Store, BaselineKey, &stored); err != nil {
		// an unreadable baseline behaves like a first poll
		r.Logger.Warn("discarding unreadable file baseline", "err", err)
		stored = nil
	}

	res := &Result{Files: files}
	res.First = len(stored) == 0 && len(current) > 0
	res.Added = difference(current, stored)
	res.Removed = difference(stored, current)
	res.Changed = res.First || len(res.Added) > 0 || len(res.Removed) > 0 || len(stored) != len(current)

	if err := kvstore.SetJSON(ctx, r.Store, BaselineKey, current); err != nil {
		return nil, fmt.Errorf("failed to store file baseline: %w", err)
	}

	r.Logger.Debug("polled dump files",
		"files", len(current), "changed", res.Changed,
		"added", strings.Join(res.Added, ","), "removed", strings.Join(res.Removed, ","))
	return res, nil
}

// difference returns the elements of a that are not in b.
func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
