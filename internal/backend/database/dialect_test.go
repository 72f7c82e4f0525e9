package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTableExistsClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{
			name:    "MySQL duplicate table",
			dialect: DialectMySQL,
			err:     &mysql.MySQLError{Number: 1050, Message: "Table 'images' already exists"},
			want:    true,
		},
		{
			name:    "MySQL wrapped duplicate table",
			dialect: DialectMySQL,
			err:     fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1050}),
			want:    true,
		},
		{
			name:    "MySQL access denied",
			dialect: DialectMySQL,
			err:     &mysql.MySQLError{Number: 1142, Message: "CREATE command denied"},
			want:    false,
		},
		{
			name:    "Postgres duplicate table",
			dialect: DialectPostgres,
			err:     &pgconn.PgError{Code: "42P07", Message: `relation "images" already exists`},
			want:    true,
		},
		{
			name:    "Postgres insufficient privilege",
			dialect: DialectPostgres,
			err:     &pgconn.PgError{Code: "42501"},
			want:    false,
		},
		{
			name:    "SQLite plain error is not classified",
			dialect: DialectSQLite,
			err:     errors.New("table images already exists"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := statementsFor(tt.dialect)
			if err != nil {
				t.Fatalf("statementsFor(%q) error: %v", tt.dialect, err)
			}
			if got := stmts.tableExists(tt.err); got != tt.want {
				t.Errorf("tableExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatementsFor_Unknown(t *testing.T) {
	if _, err := statementsFor(Dialect("oracle")); !errors.Is(err, ErrUnsupportedEndpoint) {
		t.Fatalf("expected ErrUnsupportedEndpoint, got %v", err)
	}
}
