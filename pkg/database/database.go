package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"task-management/configs"

	_ "github.com/lib/pq"
)

// DSN builds the lib/pq connection string for dbName.
func DSN(cfg configs.Config, dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, dbName)
}

// ConnectDB opens and pings the Postgres database named dbName.
func ConnectDB(ctx context.Context, cfg configs.Config, dbName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg, dbName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
