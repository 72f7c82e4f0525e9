package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLDatabase is a single-connection session against one of the supported
// dialects.
type SQLDatabase struct {
	db         *sql.DB
	endpoint   Endpoint
	statements *statements
}

func NewSQLDatabase(ctx context.Context, endpoint Endpoint, username, password string) (DatabaseService, error) {
	stmts, err := statementsFor(endpoint.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(stmts.driverName, endpoint.DSN(username, password))
	if err != nil {
		return nil, err
	}

	// One session, one connection. This also keeps ":memory:" SQLite databases
	// alive for the lifetime of the session.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}

	return &SQLDatabase{
		db:         db,
		endpoint:   endpoint,
		statements: stmts,
	}, nil
}

func (s *SQLDatabase) CreateDatabase(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.statements.createTable)
	if err != nil {
		if s.statements.tableExists(err) {
			return fmt.Errorf("%w: %w", ErrTableExists, err)
		}
		return err
	}
	return nil
}

func (s *SQLDatabase) IsOpen(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func (s *SQLDatabase) Dialect() Dialect {
	return s.endpoint.Dialect
}

func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLDatabase) CreateImage(ctx context.Context, image []byte, caption string) (int64, error) {
	if s.statements.returningID {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.statements.insertImage, image, caption).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := s.db.ExecContext(ctx, s.statements.insertImage, image, caption)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLDatabase) GetImages(ctx context.Context) ([]*ImageInfo, error) {
	rows, err := s.db.QueryContext(ctx, s.statements.selectImages)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as rows.Err is checked below
	}()

	var images []*ImageInfo
	for rows.Next() {
		var (
			info    ImageInfo
			caption sql.NullString
			size    sql.NullInt64
		)
		if err := rows.Scan(&info.ID, &caption, &size); err != nil {
			return nil, err
		}
		info.Caption = caption.String
		info.Size = size.Int64
		images = append(images, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

func (s *SQLDatabase) GetImageByID(ctx context.Context, id int64) (*Image, error) {
	row := s.db.QueryRowContext(ctx, s.statements.selectByID, id)

	var (
		img     Image
		caption sql.NullString
	)
	if err := row.Scan(&img.ID, &img.Image, &caption); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	img.Caption = caption.String
	return &img, nil
}

func (s *SQLDatabase) DeleteImage(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.statements.deleteByID, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrImageNotFound, id)
	}
	return nil
}
