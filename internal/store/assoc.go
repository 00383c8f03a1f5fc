package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"NewsSentinel/internal/model"
)

const lastDecayKey = "last_decay_date"

// AssociationStore persists keyword-instrument confidence weights. Seed
// rows mirror the static mapping file; learned rows are reinforced by
// co-occurrence and decay daily until evicted below the floor.
type AssociationStore struct {
	db *sql.DB
	mu sync.Mutex
}

// SeedAll writes the static seed associations, replacing previous seed
// weights so mapping-file edits take effect on restart.
func (s *AssociationStore) SeedAll(seeds []model.Association, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, seed := range seeds {
		_, err := tx.Exec(`INSERT INTO associations (keyword, instrument, source, weight, last_updated)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(keyword, instrument, source) DO UPDATE SET weight = excluded.weight`,
			seed.Keyword, seed.Instrument, string(model.SourceSeed), seed.Weight, date)
		if err != nil {
			return fmt.Errorf("upsert seed %s->%s: %w", seed.Keyword, seed.Instrument, err)
		}
	}
	return tx.Commit()
}

// Lookup returns every association for a keyword, seed and learned.
func (s *AssociationStore) Lookup(keyword string) ([]model.Association, error) {
	rows, err := s.db.Query(`SELECT keyword, instrument, source, weight, last_updated
		FROM associations WHERE keyword = ?`, keyword)
	if err != nil {
		return nil, fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()
	return scanAssociations(rows)
}

// All returns every stored association, used by bulk maintenance passes.
func (s *AssociationStore) All() ([]model.Association, error) {
	rows, err := s.db.Query(`SELECT keyword, instrument, source, weight, last_updated FROM associations`)
	if err != nil {
		return nil, fmt.Errorf("query all associations: %w", err)
	}
	defer rows.Close()
	return scanAssociations(rows)
}

func scanAssociations(rows *sql.Rows) ([]model.Association, error) {
	var out []model.Association
	for rows.Next() {
		var a model.Association
		var source, updated string
		if err := rows.Scan(&a.Keyword, &a.Instrument, &source, &a.Weight, &updated); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		a.Source = model.AssociationSource(source)
		if t, err := time.Parse("2006-01-02", updated); err == nil {
			a.LastUpdated = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Reinforce moves the learned weight for a pair toward 1 by the learning
// rate step, creating the association at weight = rate if absent.
func (s *AssociationStore) Reinforce(keyword, instrument string, rate float64, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO associations (keyword, instrument, source, weight, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(keyword, instrument, source)
		DO UPDATE SET weight = MIN(1.0, weight + ? * (1.0 - weight)), last_updated = excluded.last_updated`,
		keyword, instrument, string(model.SourceLearned), rate, date, rate)
	if err != nil {
		return fmt.Errorf("reinforce %s->%s: %w", keyword, instrument, err)
	}
	return nil
}

// ApplyDecay multiplies every learned weight not reinforced today by the
// decay factor and evicts learned rows under the floor. Runs at most once
// per date regardless of how many cycles invoke it; returns applied=false
// when today's decay already ran.
func (s *AssociationStore) ApplyDecay(date string, factor, floor float64) (applied bool, evicted int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("begin decay: %w", err)
	}
	defer tx.Rollback()

	var last sql.NullString
	err = tx.QueryRow(`SELECT value FROM meta WHERE key = ?`, lastDecayKey).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return false, 0, fmt.Errorf("read decay marker: %w", err)
	}
	if last.Valid && last.String == date {
		return false, 0, nil
	}

	_, err = tx.Exec(`UPDATE associations SET weight = weight * ?
		WHERE source = ? AND last_updated < ?`,
		factor, string(model.SourceLearned), date)
	if err != nil {
		return false, 0, fmt.Errorf("decay weights: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM associations WHERE source = ? AND weight < ?`,
		string(model.SourceLearned), floor)
	if err != nil {
		return false, 0, fmt.Errorf("evict associations: %w", err)
	}
	n, _ := res.RowsAffected()

	_, err = tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, lastDecayKey, date)
	if err != nil {
		return false, 0, fmt.Errorf("write decay marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit decay: %w", err)
	}
	return true, int(n), nil
}
