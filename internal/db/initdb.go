package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"

	"adbuilder/internal/logger"
)

// maintenanceDB is the database every Postgres server has; new databases
// are created from a connection to it.
const maintenanceDB = "postgres"

// CreateDatabaseIfNotExists creates the database named in connString on its
// server when it is missing.
func CreateDatabaseIfNotExists(ctx context.Context, connString string, log *logger.Logger) error {
	log = logger.OrNop(log)
	target, err := parseDSN(connString)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}
	name := target.database()
	if name == "" {
		return errors.New("connection string names no database")
	}

	admin, err := sql.Open("postgres", target.withDatabase(maintenanceDB))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", maintenanceDB, err)
	}
	defer admin.Close()

	var exists bool
	err = admin.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up database %s: %w", name, err)
	}
	if exists {
		return nil
	}

	log.Info("creating database", "name", name)
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// dsn is a connection string in URL or key=value form.
type dsn struct {
	u     *url.URL
	pairs []string
}

func parseDSN(s string) (dsn, error) {
	if strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") {
		u, err := url.Parse(s)
		if err != nil {
			return dsn{}, err
		}
		return dsn{u: u}, nil
	}
	pairs := strings.Fields(s)
	if len(pairs) == 0 {
		return dsn{}, errors.New("empty connection string")
	}
	return dsn{pairs: pairs}, nil
}

func (d dsn) database() string {
	if d.u != nil {
		return strings.TrimPrefix(d.u.Path, "/")
	}
	for _, p := range d.pairs {
		if v, ok := strings.CutPrefix(p, "dbname="); ok {
			return v
		}
	}
	return ""
}

// withDatabase returns the connection string pointed at another database.
func (d dsn) withDatabase(name string) string {
	if d.u != nil {
		u := *d.u
		u.Path = "/" + name
		return u.String()
	}
	out := make([]string, 0, len(d.pairs)+1)
	replaced := false
	for _, p := range d.pairs {
		if strings.HasPrefix(p, "dbname=") {
			p, replaced = "dbname="+name, true
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, "dbname="+name)
	}
	return strings.Join(out, " ")
}
