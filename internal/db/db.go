package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS groups (
            id SERIAL PRIMARY KEY,
            group_id VARCHAR(20) NOT NULL UNIQUE,
            group_name VARCHAR(120) NOT NULL DEFAULT '',
            message_count INT NOT NULL DEFAULT 0,
            like_count INT NOT NULL DEFAULT 0,
            member_count INT NOT NULL DEFAULT 0,
            top_message VARCHAR(1000) NOT NULL DEFAULT 'None',
            top_likes INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS members (
            id SERIAL PRIMARY KEY,
            user_id VARCHAR(20) NOT NULL,
            group_id VARCHAR(20) NOT NULL,
            username VARCHAR(100) NOT NULL DEFAULT '',
            avatar_url VARCHAR(500) NOT NULL DEFAULT '',
            message_count INT NOT NULL DEFAULT 0,
            like_count INT NOT NULL DEFAULT 0,
            likes_given INT NOT NULL DEFAULT 0,
            is_ignored BOOLEAN NOT NULL DEFAULT FALSE,
            is_mod BOOLEAN NOT NULL DEFAULT FALSE,
            UNIQUE(group_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS commands (
            id SERIAL PRIMARY KEY,
            group_id VARCHAR(20) NOT NULL,
            command VARCHAR(120) NOT NULL,
            response VARCHAR(1000) NOT NULL,
            description VARCHAR(1000) NOT NULL DEFAULT 'No description added yet!',
            times_used INT NOT NULL DEFAULT 0,
            UNIQUE(group_id, command)
        );`,
		`CREATE TABLE IF NOT EXISTS reminders (
            id SERIAL PRIMARY KEY,
            user_id VARCHAR(50) NOT NULL,
            group_id VARCHAR(50) NOT NULL,
            message VARCHAR(1000) NOT NULL,
            due_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_group ON reminders (group_id, due_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
