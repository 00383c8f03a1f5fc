package store

import (
	"database/sql"
	"fmt"
	"sync"
)

// TrendStore persists per-day keyword mention counts in hour buckets.
// Past days are never rewritten; within a day, counts only accumulate.
type TrendStore struct {
	db *sql.DB
	mu sync.Mutex
}

// AppendCounts records one cycle's keyword counts into today's hour bucket.
// The cycle ID acts as an idempotency marker: appending the same cycle
// twice is a no-op and returns applied=false.
func (s *TrendStore) AppendCounts(date, cycleID string, hour int, counts map[string]int) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(1) FROM trend_cycles WHERE date = ? AND cycle_id = ?`, date, cycleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cycle marker: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	if _, err := tx.Exec(`INSERT INTO trend_cycles (date, cycle_id) VALUES (?, ?)`, date, cycleID); err != nil {
		return false, fmt.Errorf("insert cycle marker: %w", err)
	}

	for keyword, count := range counts {
		if count <= 0 {
			continue
		}
		_, err := tx.Exec(`INSERT INTO trend_counts (date, keyword, hour, count) VALUES (?, ?, ?, ?)
			ON CONFLICT(date, keyword, hour) DO UPDATE SET count = count + excluded.count`,
			date, keyword, hour, count)
		if err != nil {
			return false, fmt.Errorf("upsert count for %s: %w", keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit append: %w", err)
	}
	return true, nil
}

// DailyTotals returns the summed mention count per date for one keyword
// over the half-open date range [from, to).
func (s *TrendStore) DailyTotals(keyword, from, to string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT date, SUM(count) FROM trend_counts
		WHERE keyword = ? AND date >= ? AND date < ? GROUP BY date`,
		keyword, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var date string
		var total int
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals[date] = total
	}
	return totals, rows.Err()
}

// TodayTotal returns the accumulated count for a keyword on one date.
func (s *TrendStore) TodayTotal(keyword, date string) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(count) FROM trend_counts WHERE keyword = ? AND date = ?`,
		keyword, date).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query today total: %w", err)
	}
	return int(total.Int64), nil
}
