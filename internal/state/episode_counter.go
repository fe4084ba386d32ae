/*

This file manages the persistent global episode counter. Storing it in the
database keeps episode numbering continuous across simulator restarts.

*/

package state

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ensureEpisodeCounterTable creates the episode_counter table if it doesn't
// exist.
func ensureEpisodeCounterTable() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS episode_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_episode INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		INSERT INTO episode_counter (id, current_episode)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`

	if _, err := DB.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create episode_counter table: %w", err)
	}
	return nil
}

// IncrementEpisodeNumber atomically bumps and returns the global episode
// counter.
func IncrementEpisodeNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		UPDATE episode_counter
		SET current_episode = current_episode + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_episode;
	`

	var episode int
	if err := DB.QueryRow(query).Scan(&episode); err != nil {
		return 0, fmt.Errorf("failed to increment episode counter: %w", err)
	}

	log.Debug().Int("episode", episode).Msg("Episode counter incremented")
	return episode, nil
}
