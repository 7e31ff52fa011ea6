package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/challenge-bot/internal/fetch"
	"github.com/sakif/challenge-bot/internal/model"
)

// Dataset is the bulk day → challenge table.
//
// It is loaded once at startup and never mutated afterwards, so it is safe
// for concurrent readers without locking.
type Dataset struct {
	days   map[int]model.ChallengeDay
	origin string
}

// datasetDocument is the remote JSON layout: {"schedule": [{"day": 1, ...}]}.
type datasetDocument struct {
	Schedule []model.ChallengeDay `json:"schedule"`
}

// LoadDataset fetches the remote dataset with the given timeout. It never
// fails: when the remote source is unreachable or malformed the built-in
// table is used instead and the error is logged.
func LoadDataset(ctx context.Context, f fetch.Fetcher, url string, timeout time.Duration, logger *slog.Logger) *Dataset {
	if url != "" {
		logger.Info("loading challenge dataset", slog.String("url", url))
		ds, err := fetchDataset(ctx, f, url, timeout)
		if err == nil {
			logger.Info("challenge dataset loaded",
				slog.String("url", url),
				slog.Int("days", ds.Len()),
			)
			return ds
		}
		logger.Error("failed to load challenge dataset",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}

	logger.Warn("using built-in challenge table", slog.Int("days", len(builtinChallenges)))
	return NewDataset("builtin", builtinChallenges)
}

func fetchDataset(ctx context.Context, f fetch.Fetcher, url string, timeout time.Duration) (*Dataset, error) {
	body, err := f.FetchJSON(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	return ParseDataset(url, body)
}

// ParseDataset decodes the remote JSON layout. Entries without a positive
// day are dropped; a document with no usable entries is an error.
func ParseDataset(origin string, body []byte) (*Dataset, error) {
	var doc datasetDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("challenge: decoding dataset: %w", err)
	}

	ds := NewDataset(origin, doc.Schedule)
	if ds.Len() == 0 {
		return nil, fmt.Errorf("challenge: dataset %s has no usable days", origin)
	}
	return ds, nil
}

// NewDataset indexes challenges by day. Later duplicates of a day are ignored.
func NewDataset(origin string, challenges []model.ChallengeDay) *Dataset {
	days := make(map[int]model.ChallengeDay, len(challenges))
	for _, c := range challenges {
		if c.Day <= 0 {
			continue
		}
		if _, dup := days[c.Day]; dup {
			continue
		}
		days[c.Day] = c
	}
	return &Dataset{days: days, origin: origin}
}

// Lookup returns a copy of the challenge for day.
func (d *Dataset) Lookup(day int) (model.ChallengeDay, bool) {
	if d == nil {
		return model.ChallengeDay{}, false
	}
	c, ok := d.days[day]
	if ok {
		c.ConceptsTaught = append([]string(nil), c.ConceptsTaught...)
	}
	return c, ok
}

// Len is the number of days in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.days)
}

// Origin is the URL the dataset came from, or "builtin".
func (d *Dataset) Origin() string {
	if d == nil {
		return ""
	}
	return d.origin
}
