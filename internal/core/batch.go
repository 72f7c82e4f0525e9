package core

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
)

type BatchImage struct {
	ID      int64  `json:"id"`
	Caption string `json:"caption"`
}

type BatchFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult reports what a folder insert did with each direct child of the
// folder.
type BatchResult struct {
	Folder   string         `json:"folder"`
	Inserted []BatchImage   `json:"inserted"`
	Failed   []BatchFailure `json:"failed,omitempty"`
	// Skipped lists subdirectories, which are never descended into.
	Skipped []string `json:"skipped,omitempty"`
	// Aborted is set when the batch stopped before visiting every entry.
	Aborted bool `json:"aborted,omitempty"`
}

// AddAllImages inserts every file directly inside folder, in name order. With
// Batch.AbortOnError unset every entry is attempted and the failures are
// returned combined; otherwise the batch stops at the first failing entry.
// Rows inserted before a failure stay committed either way.
func (service *CoreService) AddAllImages(ctx context.Context, folder string) (*BatchResult, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, service.finish("add_all_images", start, validationError(promptFolder), "")
	}
	if service.databaseService == nil {
		return nil, service.finish("add_all_images", start, ErrNotConnected, "")
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, service.finish("add_all_images", start, fmt.Errorf("%w %s: %w", ErrIO, folder, err), "")
	}

	result := &BatchResult{Folder: folder, Inserted: []BatchImage{}}
	var errs error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Aborted = true
			errs = multierr.Append(errs, fmt.Errorf("batch cancelled: %w", err))
			break
		}
		path := filepath.Join(folder, entry.Name())
		if isFolder(entry, path) {
			result.Skipped = append(result.Skipped, entry.Name())
			continue
		}

		id, caption, err := service.insertFile(ctx, path)
		if err != nil {
			slog.Warn("failed to add folder entry", "folder", folder, "name", entry.Name(), "error", err)
			result.Failed = append(result.Failed, BatchFailure{Name: entry.Name(), Error: err.Error()})
			errs = multierr.Append(errs, err)
			if service.config.Batch.AbortOnError {
				result.Aborted = true
				break
			}
			continue
		}
		result.Inserted = append(result.Inserted, BatchImage{ID: id, Caption: caption})
	}

	slog.Info("folder insert finished",
		"folder", folder,
		"inserted", len(result.Inserted),
		"failed", len(result.Failed),
		"skipped", len(result.Skipped),
		"aborted", result.Aborted,
		"duration_ms", time.Since(start).Milliseconds())

	if errs != nil {
		err = fmt.Errorf("failed to add %d of %d images: %w",
			len(result.Failed), len(result.Failed)+len(result.Inserted), errs)
		if result.Aborted {
			err = fmt.Errorf("batch aborted after %d images: %w", len(result.Inserted), errs)
		}
		return result, service.finish("add_all_images", start, err, "")
	}
	return result, service.finish("add_all_images", start, nil, "All images added to database")
}

// isFolder reports whether entry is a directory or a symlink resolving to one.
// Dangling links are not folders and fail later when read.
func isFolder(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
