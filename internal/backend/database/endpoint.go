package database

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Endpoint is a parsed database location. For SQLite, Name holds the file path
// (or ":memory:") and Address is empty.
type Endpoint struct {
	Dialect Dialect
	Address string
	Name    string
	Query   string
}

// ParseEndpoint accepts JDBC style URLs (jdbc:mysql://host:3306/db) as well as
// plain mysql://, postgres://, postgresql:// and sqlite: URLs.
func ParseEndpoint(raw string) (Endpoint, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Endpoint{}, fmt.Errorf("%w: empty endpoint", ErrUnsupportedEndpoint)
	}
	s = strings.TrimPrefix(s, "jdbc:")

	if rest, ok := strings.CutPrefix(s, "sqlite:"); ok {
		rest = strings.TrimPrefix(rest, "//")
		if rest == "" {
			return Endpoint{}, fmt.Errorf("%w: sqlite endpoint %q has no path", ErrUnsupportedEndpoint, raw)
		}
		return Endpoint{Dialect: DialectSQLite, Name: rest}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", ErrUnsupportedEndpoint, err)
	}

	var dialect Dialect
	switch strings.ToLower(u.Scheme) {
	case "mysql":
		dialect = DialectMySQL
	case "postgres", "postgresql":
		dialect = DialectPostgres
	default:
		return Endpoint{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q has no host", ErrUnsupportedEndpoint, raw)
	}

	return Endpoint{
		Dialect: dialect,
		Address: u.Host,
		Name:    strings.TrimPrefix(u.Path, "/"),
		Query:   u.RawQuery,
	}, nil
}

// DSN renders the driver specific data source name. Credentials are ignored
// for SQLite.
func (e Endpoint) DSN(username, password string) string {
	switch e.Dialect {
	case DialectMySQL:
		cfg := mysql.NewConfig()
		cfg.User = username
		cfg.Passwd = password
		cfg.Net = "tcp"
		cfg.Addr = e.Address
		cfg.DBName = e.Name
		if e.Query != "" {
			values, err := url.ParseQuery(e.Query)
			if err == nil {
				cfg.Params = make(map[string]string, len(values))
				for key := range values {
					cfg.Params[key] = values.Get(key)
				}
			}
		}
		return cfg.FormatDSN()
	case DialectPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     e.Address,
			Path:     "/" + e.Name,
			RawQuery: e.Query,
		}
		if username != "" {
			u.User = url.UserPassword(username, password)
		}
		return u.String()
	default:
		return e.Name
	}
}

func (e Endpoint) String() string {
	switch e.Dialect {
	case DialectSQLite:
		return "sqlite:" + e.Name
	default:
		return fmt.Sprintf("%s://%s/%s", e.Dialect, e.Address, e.Name)
	}
}
