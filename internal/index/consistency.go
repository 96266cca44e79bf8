package index

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// CheckResult describes how the index differs from the repository.
type CheckResult struct {
	// Checked is the number of repository records.
	Checked int
	// Orphans are indexed documents without a repository record.
	Orphans []string
	// Missing are repository records without an indexed document.
	Missing  []string
	Duration time.Duration
}

// Consistent reports whether nothing needs repair.
func (r *CheckResult) Consistent() bool {
	return len(r.Orphans) == 0 && len(r.Missing) == 0
}

// ConsistencyChecker compares repository identifiers with indexed ones.
type ConsistencyChecker struct {
	runner *Runner
}

// NewConsistencyChecker creates a checker using the runner's repository
// and sink.
func NewConsistencyChecker(runner *Runner) *ConsistencyChecker {
	return &ConsistencyChecker{runner: runner}
}

// Check lists orphaned and missing documents.
func (c *ConsistencyChecker) Check(ctx context.Context) (*CheckResult, error) {
	start := time.Now()
	deps := c.runner.deps

	ids, err := deps.Records.IDs(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := orphans(ctx, deps.Sink, ids)
	if err != nil {
		return nil, err
	}
	stored, err := deps.Sink.AllIDs(ctx)
	if err != nil {
		return nil, err
	}

	indexed := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		indexed[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := indexed[id]; !ok {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)

	return &CheckResult{
		Checked:  len(ids),
		Orphans:  stale,
		Missing:  missing,
		Duration: time.Since(start),
	}, nil
}

// Repair deletes orphans and builds missing documents.
func (c *ConsistencyChecker) Repair(ctx context.Context, res *CheckResult) (*RunnerResult, error) {
	deps := c.runner.deps
	if len(res.Orphans) > 0 {
		if err := deps.Sink.Delete(ctx, res.Orphans...); err != nil {
			return nil, err
		}
		deps.Logger.Info("orphans_removed", slog.Int("count", len(res.Orphans)))
	}

	out, err := c.runner.Rebuild(ctx, res.Missing)
	if err != nil {
		return nil, err
	}
	out.Removed = len(res.Orphans)
	return out, nil
}
