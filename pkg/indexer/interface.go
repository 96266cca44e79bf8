package indexer

import (
	"context"
	"time"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/normalize"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
)

// FieldIndexer produces the partial document for one concern.
//
// Fields must have no side effects other than notifications through the
// reporter it was constructed with. A returned error aborts the document.
type FieldIndexer interface {
	Fields(ctx context.Context) (Document, error)
}

// FieldIndexerFunc adapts a function to FieldIndexer.
type FieldIndexerFunc func(ctx context.Context) (Document, error)

// Fields calls f.
func (f FieldIndexerFunc) Fields(ctx context.Context) (Document, error) {
	return f(ctx)
}

// Factory binds a field indexer to the context of one record.
type Factory func(Deps) FieldIndexer

// Descriptor names a field indexer for pipelines and error reports.
type Descriptor struct {
	Name string
	New  Factory
}

// Deps is everything a field indexer may need. Each indexer reads only
// the subset it cares about.
type Deps struct {
	// ID is the external identifier of the record being indexed.
	ID string

	Record             *model.Record
	ParentCollections  []*model.Record
	AdministrativeTags []string

	Records   repository.RecordFinder
	Tags      repository.TagFinder
	Releases  repository.ReleaseFinder
	Workflows repository.WorkflowClient

	Cache       *cache.Cache
	Reporter    notify.Reporter
	Transformer normalize.Transformer

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) notify(ctx context.Context, message string) {
	if d.Reporter != nil {
		d.Reporter.Notify(ctx, message)
	}
}
