package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"NewsSentinel/internal/feed"
	"NewsSentinel/internal/model"
)

// archiveFile is the on-disk replay archive: one entry per trading day
// with the day's extracted observations and closing quotes.
type archiveFile struct {
	Days []struct {
		Date         string             `json:"date"`
		Quotes       map[string]float64 `json:"quotes"`
		Observations []struct {
			Keyword     string   `json:"keyword"`
			Mentions    int      `json:"mentions"`
			Sentiment   float64  `json:"sentiment"`
			ArticleIDs  []string `json:"article_ids"`
			Instruments []string `json:"instruments"`
		} `json:"observations"`
	} `json:"days"`
}

// LoadDays reads a replay archive and returns the days sorted ascending
// by date.
func LoadDays(path string) ([]DayInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var raw archiveFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	days := make([]DayInput, 0, len(raw.Days))
	for _, d := range raw.Days {
		date, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			return nil, fmt.Errorf("archive day %q: %w", d.Date, err)
		}
		snap := &feed.Snapshot{InstrumentMentions: make(map[string][]string)}
		for _, o := range d.Observations {
			snap.Observations = append(snap.Observations, model.KeywordObservation{
				Keyword:    o.Keyword,
				Mentions:   o.Mentions,
				Sentiment:  o.Sentiment,
				ArticleIDs: o.ArticleIDs,
				ObservedAt: date,
			})
			if len(o.Instruments) > 0 {
				snap.InstrumentMentions[o.Keyword] = append(snap.InstrumentMentions[o.Keyword], o.Instruments...)
			}
		}
		days = append(days, DayInput{Date: date, Snapshot: snap, Quotes: d.Quotes})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}
