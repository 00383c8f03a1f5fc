package feed

import "context"

// StaticProvider returns a fixed snapshot, used for development and tests.
type StaticProvider struct {
	Snapshot *Snapshot
	Err      error
}

func (s *StaticProvider) Name() string { return "static" }

func (s *StaticProvider) Collect(_ context.Context) (*Snapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Snapshot == nil {
		return &Snapshot{}, nil
	}
	return s.Snapshot, nil
}
