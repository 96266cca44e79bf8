package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
)

// Memory is a Repository held in process memory. Release directives fall
// back to the record's own administrative release tags when none were put
// explicitly. Failures can be injected per identifier.
type Memory struct {
	mu        sync.RWMutex
	records   map[string]*model.Record
	tags      map[string][]string
	releases  map[string][]model.ReleaseTag
	workflows map[string]*model.WorkflowState
	failures  map[string]error
	finds     map[string]int
}

// NewMemory creates an empty repository.
func NewMemory() *Memory {
	return &Memory{
		records:   make(map[string]*model.Record),
		tags:      make(map[string][]string),
		releases:  make(map[string][]model.ReleaseTag),
		workflows: make(map[string]*model.WorkflowState),
		failures:  make(map[string]error),
		finds:     make(map[string]int),
	}
}

var _ Repository = (*Memory)(nil)

// PutRecord stores or replaces rec.
func (m *Memory) PutRecord(rec *model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ExternalIdentifier] = rec
}

// RemoveRecord deletes the record with id.
func (m *Memory) RemoveRecord(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}

// PutTags sets the administrative tags of id.
func (m *Memory) PutTags(id string, tags []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[id] = tags
}

// PutReleaseTags sets the release directives of id.
func (m *Memory) PutReleaseTags(id string, tags []model.ReleaseTag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[id] = tags
}

// PutWorkflow sets the workflow state of id.
func (m *Memory) PutWorkflow(id string, state *model.WorkflowState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[id] = state
}

// Fail makes every lookup of id return err.
func (m *Memory) Fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = err
}

// FindCount returns how many times Find was called for id.
func (m *Memory) FindCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finds[id]
}

// Find implements RecordFinder.
func (m *Memory) Find(_ context.Context, id string) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds[id]++
	if err := m.failures[id]; err != nil {
		return nil, err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.NotFound(id)
	}
	return rec, nil
}

// AdministrativeTags implements TagFinder.
func (m *Memory) AdministrativeTags(_ context.Context, id string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[id]; err != nil {
		return nil, err
	}
	if tags, ok := m.tags[id]; ok {
		return tags, nil
	}
	if _, ok := m.records[id]; ok {
		return []string{}, nil
	}
	return nil, errors.New(errors.ErrCodeTagsNotFound, "no administrative tags for "+id, nil).
		WithDetail("id", id)
}

// ReleaseTags implements ReleaseFinder.
func (m *Memory) ReleaseTags(_ context.Context, id string) ([]model.ReleaseTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[id]; err != nil {
		return nil, err
	}
	if tags, ok := m.releases[id]; ok {
		return tags, nil
	}
	if rec, ok := m.records[id]; ok {
		return rec.Administrative.ReleaseTags, nil
	}
	return nil, errors.NotFound(id)
}

// WorkflowStatus implements WorkflowClient. Unknown objects have an empty state.
func (m *Memory) WorkflowStatus(_ context.Context, id string, _ int) (*model.WorkflowState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[id]; err != nil {
		return nil, err
	}
	if state, ok := m.workflows[id]; ok {
		return state, nil
	}
	return &model.WorkflowState{}, nil
}

// IDs implements Lister.
func (m *Memory) IDs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
