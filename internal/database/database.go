// Package database opens the Postgres pool shared by the SQL and GORM
// repositories and makes sure the person table exists.
package database

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/juju/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const DriverName = "pgx"

const createPersonTable = `
	CREATE TABLE IF NOT EXISTS person (
		id BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(80) NOT NULL,
		last_name VARCHAR(80) NOT NULL,
		email VARCHAR(80) NOT NULL,
		address VARCHAR(100) NOT NULL,
		gender VARCHAR(6) NOT NULL,
		CONSTRAINT person_email_key UNIQUE (email)
	)
`

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open(DriverName, url)
	if err != nil {
		return nil, errors.Annotatef(err, "opening database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Annotatef(err, "pinging database")
	}

	return db, nil
}

// EnsureSchema creates the person table when it is missing. The UNIQUE
// constraint on email is what the repositories translate into
// person.ErrEmailExists.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createPersonTable); err != nil {
		return errors.Annotatef(err, "creating person table")
	}
	return nil
}

// OpenGorm layers GORM over an existing pool.
func OpenGorm(db *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Annotatef(err, "opening gorm")
	}
	return gdb, nil
}
