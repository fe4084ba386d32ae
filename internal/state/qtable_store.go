package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ammlab/dexsim/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveQTable saves a trained Q-table. When makeActive is true any previously
// active table under the same config name is deactivated first, so the
// (config_name, is_active) pair always resolves to at most one row.
func SaveQTable(record types.QTableRecord, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	valuesJSON, err := json.Marshal(record.Table)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal q-table values: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE q_tables SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		if _, err = tx.Exec(stmtDeactivate, record.ConfigName); err != nil {
			return 0, fmt.Errorf("failed to deactivate existing q-table for %s: %w", record.ConfigName, err)
		}
	}

	stmt := `
		INSERT INTO q_tables (
			config_name, run_id, is_active, created_at,
			price_buckets, time_buckets, alpha, gamma, epsilon, q_values
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;
	`

	var id int64
	err = tx.QueryRow(
		stmt,
		record.ConfigName, record.RunID, makeActive, time.Now(),
		record.PriceBuckets, record.TimeBuckets,
		record.Alpha, record.Gamma, record.Epsilon, valuesJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert q-table: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit q-table transaction: %w", err)
	}

	log.Info().
		Int64("id", id).
		Str("config_name", record.ConfigName).
		Bool("is_active", makeActive).
		Msg("Q-table saved to database")

	return id, nil
}

// LoadActiveQTable retrieves the active Q-table for the given config name.
func LoadActiveQTable(configName string) (*types.QTableRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT config_name, run_id, created_at,
			price_buckets, time_buckets, alpha, gamma, epsilon, q_values
		FROM q_tables
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1;
	`

	var record types.QTableRecord
	var valuesJSON []byte
	err := DB.QueryRow(query, configName).Scan(
		&record.ConfigName, &record.RunID, &record.CreatedAt,
		&record.PriceBuckets, &record.TimeBuckets,
		&record.Alpha, &record.Gamma, &record.Epsilon, &valuesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no active q-table for config %s", configName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active q-table: %w", err)
	}

	if err := json.Unmarshal(valuesJSON, &record.Table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal q-table values: %w", err)
	}
	return &record, nil
}
