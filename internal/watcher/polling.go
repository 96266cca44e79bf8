package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/dorindex/internal/repository/filerepo"
)

// Poller detects repository changes by comparing file snapshots.
type Poller struct {
	interval time.Duration
	state    map[string]fileSnapshot
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPoller creates a poller scanning every interval.
func NewPoller(interval time.Duration) *Poller {
	return &Poller{interval: interval}
}

// Run takes a baseline snapshot of root, then reports differences through
// emit until ctx is cancelled or stop is closed.
func (p *Poller) Run(ctx context.Context, root string, stop <-chan struct{}, emit func(Event), onErr func(error)) error {
	state, err := snapshot(root)
	if err != nil {
		return err
	}
	p.state = state

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			if err := p.poll(root, emit); err != nil {
				onErr(err)
			}
		}
	}
}

func (p *Poller) poll(root string, emit func(Event)) error {
	current, err := snapshot(root)
	if err != nil {
		return err
	}
	now := time.Now()

	for rel, snap := range current {
		kind, _ := classify(rel)
		prev, seen := p.state[rel]
		switch {
		case !seen:
			emit(Event{Path: rel, Operation: OpCreate, Kind: kind, Timestamp: now})
		case prev != snap:
			emit(Event{Path: rel, Operation: OpModify, Kind: kind, Timestamp: now})
		}
	}
	for rel := range p.state {
		if _, ok := current[rel]; !ok {
			kind, _ := classify(rel)
			emit(Event{Path: rel, Operation: OpDelete, Kind: kind, Timestamp: now})
		}
	}

	p.state = current
	return nil
}

// snapshot stats every repository file under root.
func snapshot(root string) (map[string]fileSnapshot, error) {
	out := make(map[string]fileSnapshot)
	add := func(rel string) {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil || info.IsDir() {
			return
		}
		out[rel] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
	}

	for _, name := range []string{filerepo.TagsFile, filerepo.ReleasesFile, filerepo.WorkflowsFile, ConfigFile} {
		add(name)
	}

	entries, err := os.ReadDir(filepath.Join(root, filerepo.RecordsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, e := range entries {
		rel := filerepo.RecordsDir + "/" + e.Name()
		if _, ok := classify(rel); ok {
			add(rel)
		}
	}
	return out, nil
}
