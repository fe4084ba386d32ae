package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ammlab/dexsim/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveRunSnapshot persists a completed simulation episode.
func SaveRunSnapshot(snapshot types.RunSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	rewardsJSON, err := json.Marshal(snapshot.Rewards)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal rewards: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (
			run_id, kind, episode_number, run_timestamp, steps, fee_rate,
			final_amm_price, final_reference_price,
			volume_token_a, volume_token_b, rewards
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id;
	`

	var id int64
	err = DB.QueryRow(
		query,
		snapshot.RunID, snapshot.Kind, snapshot.EpisodeNumber, snapshot.Timestamp,
		snapshot.Steps, snapshot.FeeRate,
		snapshot.FinalAMMPrice, snapshot.FinalRefPrice,
		snapshot.VolumeTokenA, snapshot.VolumeTokenB, rewardsJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save run snapshot: %w", err)
	}

	log.Info().
		Int64("id", id).
		Str("run_id", snapshot.RunID).
		Str("kind", snapshot.Kind).
		Int("episode_number", snapshot.EpisodeNumber).
		Msg("Run snapshot saved to database")

	return id, nil
}

// GetRecentRuns retrieves the most recent run snapshots, newest first.
func GetRecentRuns(limit int) ([]types.RunSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT run_id, kind, episode_number, run_timestamp, steps, fee_rate,
			final_amm_price, final_reference_price,
			volume_token_a, volume_token_b, rewards
		FROM simulation_runs
		ORDER BY run_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunSnapshot
	for rows.Next() {
		snapshot, err := scanRunSnapshot(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating run rows: %w", err)
	}
	return runs, nil
}

// GetLatestRun retrieves the most recent run snapshot of the given kind.
func GetLatestRun(kind string) (*types.RunSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT run_id, kind, episode_number, run_timestamp, steps, fee_rate,
			final_amm_price, final_reference_price,
			volume_token_a, volume_token_b, rewards
		FROM simulation_runs
		WHERE kind = $1
		ORDER BY run_timestamp DESC
		LIMIT 1;
	`

	row := DB.QueryRow(query, kind)
	snapshot, err := scanRunSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no %s runs recorded", kind)
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSnapshot(row rowScanner) (types.RunSnapshot, error) {
	var snapshot types.RunSnapshot
	var rewardsJSON []byte

	err := row.Scan(
		&snapshot.RunID, &snapshot.Kind, &snapshot.EpisodeNumber, &snapshot.Timestamp,
		&snapshot.Steps, &snapshot.FeeRate,
		&snapshot.FinalAMMPrice, &snapshot.FinalRefPrice,
		&snapshot.VolumeTokenA, &snapshot.VolumeTokenB, &rewardsJSON,
	)
	if err == sql.ErrNoRows {
		return snapshot, err
	}
	if err != nil {
		return snapshot, fmt.Errorf("failed to scan run snapshot: %w", err)
	}

	if err := json.Unmarshal(rewardsJSON, &snapshot.Rewards); err != nil {
		return snapshot, fmt.Errorf("failed to unmarshal rewards: %w", err)
	}
	return snapshot, nil
}
