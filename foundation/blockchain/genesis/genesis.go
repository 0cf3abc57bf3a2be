// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Set of errors returned by Validate.
var (
	ErrInvalidDifficulty = errors.New("difficulty must be at least 1")
	ErrInvalidReward     = errors.New("mining reward must be positive")
	ErrInvalidInterval   = errors.New("block intervals must be positive with fast no longer than slow")
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Difficulty   uint      `json:"difficulty"`    // Number of leading zeros required by the first block.
	MiningReward float64   `json:"mining_reward"` // Reward paid to the miner of every block.
	FastBlock    Duration  `json:"fast_block"`    // Blocks mined faster than this raise the difficulty.
	SlowBlock    Duration  `json:"slow_block"`    // Blocks mined slower than this lower the difficulty.
}

// Default returns the settings the ledger runs with when no genesis file
// is provided.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   1,
		MiningReward: 6.25,
		FastBlock:    Duration(10 * time.Second),
		SlowBlock:    Duration(20 * time.Second),
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Values missing from the file
// keep their defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the settings can drive a ledger. Every field is required,
// start from Default to change only some of them.
func (g Genesis) Validate() error {
	if g.Difficulty == 0 {
		return ErrInvalidDifficulty
	}

	if g.MiningReward <= 0 {
		return ErrInvalidReward
	}

	if g.FastBlock <= 0 || g.SlowBlock <= 0 || g.FastBlock > g.SlowBlock {
		return ErrInvalidInterval
	}

	return nil
}

// =============================================================================

// Duration is a time.Duration that reads and writes as a string like "10s".
type Duration time.Duration

// MarshalJSON implements the json.Marshaler interface.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)

	return nil
}
