package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"NewsSentinel/internal/model"
)

// fileSnapshot is the on-disk layout the upstream extraction job drops.
type fileSnapshot struct {
	Observations []struct {
		Keyword     string   `json:"keyword"`
		Mentions    int      `json:"mentions"`
		Sentiment   float64  `json:"sentiment"`
		ArticleIDs  []string `json:"article_ids"`
		Instruments []string `json:"instruments"`
	} `json:"observations"`
}

// FileProvider reads a snapshot dropped by an upstream extraction job.
// A missing file means no news this cycle, reported as ErrDataUnavailable.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Name() string { return "file:" + p.Path }

func (p *FileProvider) Collect(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return nil, ErrDataUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("read feed snapshot: %w", err)
	}

	var raw fileSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse feed snapshot: %w", err)
	}

	snap := &Snapshot{
		InstrumentMentions: make(map[string][]string),
	}
	now := time.Now()
	for _, o := range raw.Observations {
		snap.Observations = append(snap.Observations, model.KeywordObservation{
			Keyword:    o.Keyword,
			Mentions:   o.Mentions,
			Sentiment:  o.Sentiment,
			ArticleIDs: o.ArticleIDs,
			ObservedAt: now,
		})
		if len(o.Instruments) > 0 {
			snap.InstrumentMentions[o.Keyword] = append(snap.InstrumentMentions[o.Keyword], o.Instruments...)
		}
	}
	return snap, nil
}
