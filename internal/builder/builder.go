// Package builder turns repository records into index documents. It
// resolves the related objects a record depends on, selects the pipeline
// for the record's kind and runs it.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/normalize"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

// Recorder observes completed builds.
type Recorder interface {
	ObserveBuild(kind string, duration time.Duration, err error)
}

// Options configures a Builder. Repository is required.
type Options struct {
	Repository  repository.Repository
	Cache       *cache.Cache
	Reporter    notify.Reporter
	Transformer normalize.Transformer
	Logger      *slog.Logger
	Metrics     Recorder

	// Now is passed to time-dependent indexers; defaults to time.Now.
	Now func() time.Time
}

// Builder builds index documents. It is safe for concurrent use; the cache
// it holds is shared by every build.
type Builder struct {
	repo        repository.Repository
	cache       *cache.Cache
	reporter    notify.Reporter
	transformer normalize.Transformer
	logger      *slog.Logger
	metrics     Recorder
	now         func() time.Time
}

// New creates a Builder. Missing optional collaborators get defaults: a
// fresh unbounded cache, a log reporter, the built-in transformer and the
// default logger.
func New(opts Options) (*Builder, error) {
	if opts.Repository == nil {
		return nil, errors.ConfigError("builder requires a repository", nil)
	}
	b := &Builder{
		repo:        opts.Repository,
		cache:       opts.Cache,
		reporter:    opts.Reporter,
		transformer: opts.Transformer,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.cache == nil {
		b.cache = cache.New()
	}
	if b.reporter == nil {
		b.reporter = notify.NewLogReporter(b.logger, nil)
	}
	if b.transformer == nil {
		b.transformer = normalize.Default()
	}
	return b, nil
}

// Cache returns the lookup cache shared by all builds.
func (b *Builder) Cache() *cache.Cache {
	return b.cache
}

// For binds the pipeline for rec's kind to rec and its related objects.
// Unresolvable parent collections are reported and skipped; a record that
// fails validation is rejected.
func (b *Builder) For(ctx context.Context, rec *model.Record) (*indexer.Instance, error) {
	if rec == nil {
		return nil, errors.ValidationError("nil record", nil)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	ctx = notify.WithIdentifier(ctx, rec.ExternalIdentifier)

	parents, err := b.parentCollections(ctx, rec)
	if err != nil {
		return nil, err
	}
	tags, err := b.administrativeTags(ctx, rec.ExternalIdentifier)
	if err != nil {
		return nil, err
	}

	return indexer.PipelineFor(rec.Kind()).New(indexer.Deps{
		ID:                 rec.ExternalIdentifier,
		Record:             rec,
		ParentCollections:  parents,
		AdministrativeTags: tags,
		Records:            b.repo,
		Tags:               b.repo,
		Releases:           b.repo,
		Workflows:          b.repo,
		Cache:              b.cache,
		Reporter:           b.reporter,
		Transformer:        b.transformer,
		Now:                b.now,
	}), nil
}

// Build produces the complete document for rec.
func (b *Builder) Build(ctx context.Context, rec *model.Record) (indexer.Document, error) {
	start := time.Now()
	buildID := uuid.NewString()
	kind := "unknown"
	logger := b.logger.With("build_id", buildID)
	if rec != nil {
		kind = string(rec.Kind())
		logger = logger.With("record_id", rec.ExternalIdentifier, "kind", kind)
		ctx = notify.WithIdentifier(ctx, rec.ExternalIdentifier)
	}

	doc, err := b.build(ctx, rec)
	elapsed := time.Since(start)
	if b.metrics != nil {
		b.metrics.ObserveBuild(kind, elapsed, err)
	}
	if err != nil {
		logger.Error("document_build_failed", append(errors.LogAttrs(err), "duration_ms", elapsed.Milliseconds())...)
		return nil, err
	}
	logger.Debug("document_built", "fields", len(doc), "duration_ms", elapsed.Milliseconds())
	return doc, nil
}

func (b *Builder) build(ctx context.Context, rec *model.Record) (indexer.Document, error) {
	inst, err := b.For(ctx, rec)
	if err != nil {
		return nil, err
	}
	return inst.Document(ctx)
}

// BuildID finds the record for id and builds its document.
func (b *Builder) BuildID(ctx context.Context, id string) (indexer.Document, error) {
	rec, err := b.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, rec)
}

// parentCollections resolves the collections an item belongs to through
// the shared cache. Only items have parents.
func (b *Builder) parentCollections(ctx context.Context, rec *model.Record) ([]*model.Record, error) {
	if !rec.IsItem() {
		return nil, nil
	}

	var parents []*model.Record
	for _, id := range rec.MemberOf() {
		parent, err := b.cache.Collections.GetOrLoad(ctx, id, func(ctx context.Context) (*model.Record, error) {
			return b.repo.Find(ctx, id)
		})
		if errors.IsLookupFailure(err) {
			b.reporter.Notify(ctx, fmt.Sprintf("Bad association found on %s. %s could not be found", rec.ExternalIdentifier, id))
			continue
		}
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// administrativeTags returns the tags of id; a lookup failure yields none.
func (b *Builder) administrativeTags(ctx context.Context, id string) ([]string, error) {
	tags, err := b.repo.AdministrativeTags(ctx, id)
	if errors.IsLookupFailure(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
