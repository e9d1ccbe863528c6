package db

import (
	"context"
	"database/sql"
)

// Database is a connection whose schema is brought up to date on Connect.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	DB() *sql.DB
}
