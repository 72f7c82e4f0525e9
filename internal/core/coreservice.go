package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jo-hoe/imagerepo/internal/backend/database"
	"github.com/jo-hoe/imagerepo/internal/metrics"
)

const (
	promptEndpoint = "please type in the database URL to connect"
	promptPath     = "please type in the image path to add it to the database"
	promptFolder   = "please type in the folder path to add all images to the database"
)

type openDatabaseFunc func(ctx context.Context, endpoint, username, password string) (database.DatabaseService, error)

// CoreService owns the single database session and runs every repository
// operation one at a time.
type CoreService struct {
	config       *ServiceConfig
	openDatabase openDatabaseFunc

	mu              sync.Mutex
	databaseService database.DatabaseService
	status          Status
}

func NewCoreService(config *ServiceConfig) *CoreService {
	applyDefaults(config)
	return &CoreService{
		config:       config,
		openDatabase: database.NewDatabase,
		status:       Status{Kind: StatusIdle, Message: "Not connected"},
	}
}

// Status returns the outcome of the most recent operation.
func (service *CoreService) Status() Status {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.status
}

func (service *CoreService) IsConnected() bool {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.databaseService != nil
}

// Connect opens a session unless one is already open, in which case the
// existing session is kept and the arguments are ignored. A held session that
// no longer answers is dropped and replaced. A blank endpoint or username
// falls back to the configured defaults.
func (service *CoreService) Connect(ctx context.Context, endpoint, username, password string) error {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	if service.databaseService != nil {
		if service.databaseService.IsOpen(ctx) {
			slog.Info("connect requested while a session is open, reusing session",
				"dialect", service.databaseService.Dialect())
			metrics.ConnectAttemptsTotal.WithLabelValues("reused").Inc()
			return service.finish("connect", start, nil, "Connected")
		}

		slog.Warn("held database session is closed, opening a new one",
			"dialect", service.databaseService.Dialect())
		if err := service.databaseService.Close(); err != nil {
			slog.Warn("failed to release stale session", "error", err)
		}
		service.databaseService = nil
		metrics.SessionOpen.Set(0)
	}

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = service.config.Database.Endpoint
	}
	if endpoint == "" {
		return service.finish("connect", start, validationError(promptEndpoint), "")
	}
	if strings.TrimSpace(username) == "" {
		username = service.config.Database.Username
	}

	databaseService, err := service.openDatabase(ctx, endpoint, username, password)
	if err != nil {
		slog.Error("failed to open database session", "error", err)
		metrics.ConnectAttemptsTotal.WithLabelValues("failed").Inc()
		return service.finish("connect", start, fmt.Errorf("%w: %w", ErrConnection, err), "")
	}

	service.databaseService = databaseService
	metrics.ConnectAttemptsTotal.WithLabelValues("opened").Inc()
	metrics.SessionOpen.Set(1)
	return service.finish("connect", start, nil, "Connected")
}

// EnsureSchema creates the images table. An existing table is reported as
// ErrSchemaAlreadyExists, which callers should treat as informational.
func (service *CoreService) EnsureSchema(ctx context.Context) error {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	if service.databaseService == nil {
		return service.finish("ensure_schema", start, ErrNotConnected, "")
	}

	slog.Info("initializing database schema")
	err := service.databaseService.CreateDatabase(ctx)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrTableExists):
		slog.Info("images table already exists")
		err = ErrSchemaAlreadyExists
	default:
		slog.Error("failed to create images table", "error", err)
		err = fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return service.finish("ensure_schema", start, err, "Table 'images' created")
}

// AddImage inserts the file at path as one row captioned with its base name.
func (service *CoreService) AddImage(ctx context.Context, path string) (int64, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	path = strings.TrimSpace(path)
	if path == "" {
		return 0, service.finish("add_image", start, validationError(promptPath), "")
	}
	if service.databaseService == nil {
		return 0, service.finish("add_image", start, ErrNotConnected, "")
	}

	id, _, err := service.insertFile(ctx, path)
	return id, service.finish("add_image", start, err, "Image added to database")
}

func (service *CoreService) ListImages(ctx context.Context) ([]*database.ImageInfo, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	if service.databaseService == nil {
		return nil, service.finish("list_images", start, ErrNotConnected, "")
	}

	images, err := service.databaseService.GetImages(ctx)
	if err != nil {
		err = fmt.Errorf("failed to list images: %w", err)
	}
	return images, service.finish("list_images", start, err, fmt.Sprintf("%d images in database", len(images)))
}

func (service *CoreService) GetImage(ctx context.Context, id int64) (*database.Image, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	if service.databaseService == nil {
		return nil, service.finish("get_image", start, ErrNotConnected, "")
	}

	image, err := service.databaseService.GetImageByID(ctx, id)
	if err == nil && image == nil {
		err = fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("failed to get image %d: %w", id, err)
	}
	return image, service.finish("get_image", start, err, fmt.Sprintf("Image %d loaded", id))
}

func (service *CoreService) DeleteImage(ctx context.Context, id int64) error {
	service.mu.Lock()
	defer service.mu.Unlock()
	start := time.Now()

	if service.databaseService == nil {
		return service.finish("delete_image", start, ErrNotConnected, "")
	}

	err := service.databaseService.DeleteImage(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrImageNotFound):
		err = fmt.Errorf("%w: id %d", ErrNotFound, id)
	default:
		err = fmt.Errorf("failed to delete image %d: %w", id, err)
	}
	return service.finish("delete_image", start, err, fmt.Sprintf("Image %d deleted", id))
}

// Close releases the session if one is open. It is safe to call repeatedly.
func (service *CoreService) Close() error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.databaseService == nil {
		return nil
	}

	err := service.databaseService.Close()
	service.databaseService = nil
	metrics.SessionOpen.Set(0)
	service.status = Status{Kind: StatusIdle, Message: "Not connected"}
	if err != nil {
		return fmt.Errorf("failed to close database session: %w", err)
	}
	slog.Info("database session closed")
	return nil
}

// insertFile reads the file at path and writes it as a single row. The caller
// holds the lock and has checked the session.
func (service *CoreService) insertFile(ctx context.Context, path string) (int64, string, error) {
	data, err := readFile(path)
	if err != nil {
		metrics.InsertFailuresTotal.WithLabelValues("io").Inc()
		return 0, "", fmt.Errorf("%w %s: %w", ErrIO, path, err)
	}

	caption := captionFor(path, service.config.CaptionMaxLength)
	id, err := service.databaseService.CreateImage(ctx, data, caption)
	if err != nil {
		metrics.InsertFailuresTotal.WithLabelValues("insert").Inc()
		return 0, caption, fmt.Errorf("%w: %s: %w", ErrInsert, caption, err)
	}

	metrics.ImagesInsertedTotal.Inc()
	metrics.ImageBytesInsertedTotal.Add(float64(len(data)))
	slog.Info("image added", "id", id, "caption", caption, "size_bytes", len(data))
	return id, caption, nil
}

func readFile(path string) (data []byte, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return io.ReadAll(file)
}

// finish records the outcome of an operation as the current status.
func (service *CoreService) finish(operation string, start time.Time, err error, success string) error {
	service.status = StatusFromError(err, success)
	metrics.ObserveOperation(operation, string(service.status.Kind), start)
	return err
}
