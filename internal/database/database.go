package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mauv0809/drift-bracket/internal/database/migrations"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const memory = ":memory:"

// InitDB opens the database and migrates the schema to the latest version.
// With an empty primaryURL dbPath is a local SQLite file (or ":memory:"),
// otherwise the remote Turso database at primaryURL is used.
func InitDB(dbPath, primaryURL, authToken string) (*sql.DB, error) {
	if primaryURL == "" {
		log.Info("Initializing local SQLite database", "path", dbPath)
		db, err := openLocal(dbPath)
		if err != nil {
			return nil, err
		}
		if err := migrations.Run(db, "sqlite3"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate local db: %w", err)
		}
		return db, nil
	}

	log.Info("Initializing Turso database", "url", primaryURL)
	db, err := sql.Open("libsql", primaryURL+"?authToken="+authToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", primaryURL, err)
	}
	// libSQL rejects Exec for PRAGMAs, so drain them through Query. The pragma
	// only binds the connection that ran it; stores delete dependent rows
	// themselves.
	rows, err := db.QueryContext(context.Background(), "PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	rows.Close()
	if err := migrations.Run(db, "turso"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate db %s: %w", primaryURL, err)
	}
	return db, nil
}

func openLocal(dbPath string) (*sql.DB, error) {
	dsn := "file:" + dbPath + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	if dbPath == memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local database: %w", err)
	}
	return db, nil
}
