package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

const (
	mysqlErrTableExists    = 1050
	postgresDuplicateTable = "42P07"
)

// statements holds the per-dialect SQL for the fixed images table.
type statements struct {
	driverName   string
	createTable  string
	insertImage  string
	returningID  bool
	selectImages string
	selectByID   string
	deleteByID   string
	tableExists  func(err error) bool
}

func statementsFor(dialect Dialect) (*statements, error) {
	switch dialect {
	case DialectSQLite:
		return &statements{
			driverName: "sqlite",
			createTable: `CREATE TABLE images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image BLOB,
		caption VARCHAR(100)
	)`,
			insertImage:  "INSERT INTO images (image, caption) VALUES (?, ?)",
			selectImages: "SELECT id, caption, LENGTH(image) FROM images ORDER BY id",
			selectByID:   "SELECT id, image, caption FROM images WHERE id = ?",
			deleteByID:   "DELETE FROM images WHERE id = ?",
			tableExists:  isSQLiteTableExists,
		}, nil
	case DialectMySQL:
		return &statements{
			driverName: "mysql",
			createTable: `CREATE TABLE images (
		id INTEGER PRIMARY KEY AUTO_INCREMENT,
		image LONGBLOB,
		caption VARCHAR(100)
	)`,
			insertImage:  "INSERT INTO images (image, caption) VALUES (?, ?)",
			selectImages: "SELECT id, caption, LENGTH(image) FROM images ORDER BY id",
			selectByID:   "SELECT id, image, caption FROM images WHERE id = ?",
			deleteByID:   "DELETE FROM images WHERE id = ?",
			tableExists:  isMySQLTableExists,
		}, nil
	case DialectPostgres:
		// pgx does not implement LastInsertId, the id comes back via RETURNING
		return &statements{
			driverName: "pgx",
			createTable: `CREATE TABLE images (
		id SERIAL PRIMARY KEY,
		image BYTEA,
		caption VARCHAR(100)
	)`,
			insertImage:  "INSERT INTO images (image, caption) VALUES ($1, $2) RETURNING id",
			returningID:  true,
			selectImages: "SELECT id, caption, LENGTH(image) FROM images ORDER BY id",
			selectByID:   "SELECT id, image, caption FROM images WHERE id = $1",
			deleteByID:   "DELETE FROM images WHERE id = $1",
			tableExists:  isPostgresTableExists,
		}, nil
	default:
		return nil, fmt.Errorf("%w: dialect %q", ErrUnsupportedEndpoint, dialect)
	}
}

func isSQLiteTableExists(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "already exists")
}

func isMySQLTableExists(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrTableExists
}

func isPostgresTableExists(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == postgresDuplicateTable
}
