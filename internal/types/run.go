package types

import "time"

// Run kinds stored alongside simulation snapshots.
const (
	RunKindTraining   = "training"
	RunKindEvaluation = "evaluation"
)

// RunSnapshot captures the outcome of one completed simulation episode for
// persistence and reporting.
type RunSnapshot struct {
	RunID         string             `json:"run_id"`
	Kind          string             `json:"kind"`
	EpisodeNumber int                `json:"episode_number"`
	Timestamp     time.Time          `json:"timestamp"`
	Steps         int                `json:"steps"`
	FeeRate       float64            `json:"fee_rate"`
	FinalAMMPrice float64            `json:"final_amm_price"`
	FinalRefPrice float64            `json:"final_reference_price"`
	VolumeTokenA  float64            `json:"volume_token_a"`
	VolumeTokenB  float64            `json:"volume_token_b"`
	Rewards       map[string]float64 `json:"rewards"`
}

// QTableRecord is a trained Q-table together with the hyperparameters it was
// trained under. The table layout is [priceBucket][timeBucket][actionID].
type QTableRecord struct {
	ConfigName   string        `json:"config_name"`
	RunID        string        `json:"run_id"`
	PriceBuckets int           `json:"price_buckets"`
	TimeBuckets  int           `json:"time_buckets"`
	Alpha        float64       `json:"alpha"`
	Gamma        float64       `json:"gamma"`
	Epsilon      float64       `json:"epsilon"`
	Table        [][][]float64 `json:"table"`
	CreatedAt    time.Time     `json:"created_at"`
}
