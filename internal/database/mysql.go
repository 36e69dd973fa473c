package database

import (
	"cash-ai/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mappingRunsSchema is applied on startup so a fresh database can accept runs.
const mappingRunsSchema = `CREATE TABLE IF NOT EXISTS mapping_runs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_code VARCHAR(64) NOT NULL UNIQUE,
	case_id VARCHAR(128) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	input_json LONGTEXT NOT NULL,
	result_json LONGTEXT NULL,
	diagnostics_json LONGTEXT NULL,
	error_message TEXT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	INDEX idx_mapping_runs_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

func NewMySQL(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables the service writes to.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(mappingRunsSchema)
	return err
}
