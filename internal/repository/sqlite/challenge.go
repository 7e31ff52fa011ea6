package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/repository"
)

// compile-time check that *DB implements repository.ChallengeRepository
var _ repository.ChallengeRepository = (*DB)(nil)

// GetChallengeDay returns the cached challenge for day.
func (db *DB) GetChallengeDay(ctx context.Context, day int) (*model.ChallengeDay, error) {
	var (
		c        model.ChallengeDay
		concepts string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT day, contract_name, week, example_application, concepts_taught,
		        logical_progression, youtube_link, solution_link, title, description
		 FROM challenge_days
		 WHERE day = ?`,
		day,
	).Scan(
		&c.Day,
		&c.ContractName,
		&c.Week,
		&c.ExampleApplication,
		&concepts,
		&c.LogicalProgression,
		&c.YouTubeLink,
		&c.SolutionLink,
		&c.Title,
		&c.Description,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("challenge day", strconv.Itoa(day))
		}
		return nil, fmt.Errorf("sqlite: getting challenge day %d: %w", day, err)
	}

	if err := json.Unmarshal([]byte(concepts), &c.ConceptsTaught); err != nil {
		return nil, fmt.Errorf("sqlite: decoding concepts for day %d: %w", day, err)
	}

	return &c, nil
}

// PutChallengeDay caches a resolved challenge. The first write for a day wins;
// later writes for the same day are ignored.
func (db *DB) PutChallengeDay(ctx context.Context, c *model.ChallengeDay) error {
	concepts := c.ConceptsTaught
	if concepts == nil {
		concepts = []string{}
	}
	encoded, err := json.Marshal(concepts)
	if err != nil {
		return fmt.Errorf("sqlite: encoding concepts for day %d: %w", c.Day, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO challenge_days (day, contract_name, week, example_application, concepts_taught,
		                             logical_progression, youtube_link, solution_link, title, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (day) DO NOTHING`,
		c.Day,
		c.ContractName,
		c.Week,
		c.ExampleApplication,
		string(encoded),
		c.LogicalProgression,
		c.YouTubeLink,
		c.SolutionLink,
		c.Title,
		c.Description,
	)
	if err != nil {
		return fmt.Errorf("sqlite: caching challenge day %d: %w", c.Day, err)
	}

	return nil
}
