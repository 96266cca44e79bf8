// Package filerepo is a read-only repository loaded from a directory:
// one JSON file per record plus optional YAML side files.
//
//	records/
//	  xx999xx9999.json
//	  bc999df2323.json
//	tags.yaml        # id -> [tag, ...]
//	releases.yaml    # id -> [{to, what, date, release, who}, ...]
//	workflows.yaml   # id -> {display, display_simplified, milestones, workflows}
package filerepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/repository"
)

// Side file names.
const (
	RecordsDir    = "records"
	TagsFile      = "tags.yaml"
	ReleasesFile  = "releases.yaml"
	WorkflowsFile = "workflows.yaml"
)

var (
	_ repository.Repository = (*Repo)(nil)
	_ repository.Lister     = (*Repo)(nil)
)

// Repo serves a snapshot of a directory. Reload replaces the snapshot
// atomically.
type Repo struct {
	dir string

	mu   sync.RWMutex
	snap *repository.Memory
}

// Open loads dir.
func Open(dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the directory the repository is loaded from.
func (r *Repo) Dir() string {
	return r.dir
}

// Reload rereads the directory. On error the previous snapshot is kept.
func (r *Repo) Reload() error {
	snap, err := load(r.dir)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return nil
}

func (r *Repo) current() *repository.Memory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Find implements repository.RecordFinder.
func (r *Repo) Find(ctx context.Context, id string) (*model.Record, error) {
	return r.current().Find(ctx, id)
}

// AdministrativeTags implements repository.TagFinder.
func (r *Repo) AdministrativeTags(ctx context.Context, id string) ([]string, error) {
	return r.current().AdministrativeTags(ctx, id)
}

// ReleaseTags implements repository.ReleaseFinder.
func (r *Repo) ReleaseTags(ctx context.Context, id string) ([]model.ReleaseTag, error) {
	return r.current().ReleaseTags(ctx, id)
}

// WorkflowStatus implements repository.WorkflowClient.
func (r *Repo) WorkflowStatus(ctx context.Context, id string, version int) (*model.WorkflowState, error) {
	return r.current().WorkflowStatus(ctx, id, version)
}

// IDs implements repository.Lister.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	return r.current().IDs(ctx)
}

func load(dir string) (*repository.Memory, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "repository directory not found", err).
			WithDetail("dir", dir)
	}
	if !info.IsDir() {
		return nil, errors.ConfigError(dir+" is not a directory", nil)
	}

	mem := repository.NewMemory()
	if err := loadRecords(filepath.Join(dir, RecordsDir), mem); err != nil {
		return nil, err
	}

	var tags map[string][]string
	if err := readYAML(filepath.Join(dir, TagsFile), &tags); err != nil {
		return nil, err
	}
	for id, list := range tags {
		mem.PutTags(id, list)
	}

	var releases map[string][]model.ReleaseTag
	if err := readYAML(filepath.Join(dir, ReleasesFile), &releases); err != nil {
		return nil, err
	}
	for id, list := range releases {
		mem.PutReleaseTags(id, list)
	}

	var workflows map[string]*model.WorkflowState
	if err := readYAML(filepath.Join(dir, WorkflowsFile), &workflows); err != nil {
		return nil, err
	}
	for id, state := range workflows {
		mem.PutWorkflow(id, state)
	}
	return mem, nil
}

func loadRecords(dir string, mem *repository.Memory) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		slog.Warn("records_directory_missing", slog.String("dir", dir))
		return nil
	}
	if err != nil {
		return errors.InternalError("read records directory", err).WithDetail("dir", dir)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		rec, err := loadRecord(path)
		if err != nil {
			return err
		}
		mem.PutRecord(rec)
	}
	return nil
}

func loadRecord(path string) (*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InternalError("open record", err).WithDetail("path", path)
	}
	defer f.Close()

	rec, err := model.LoadRecord(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, fmt.Errorf("%s: %w", path, err)).
			WithDetail("path", path)
	}
	return rec, nil
}

// readYAML decodes path into v. A missing file leaves v untouched.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.InternalError("read "+filepath.Base(path), err).WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.ConfigError("parse "+filepath.Base(path), err).WithDetail("path", path)
	}
	return nil
}
