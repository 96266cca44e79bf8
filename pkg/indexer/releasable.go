package indexer

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/release"
)

// Releasable indexes the destinations an object is released to.
var Releasable = Descriptor{Name: "releasable", New: newReleasableIndexer}

type releasableIndexer struct {
	deps Deps
}

func newReleasableIndexer(d Deps) FieldIndexer {
	return &releasableIndexer{deps: d}
}

func (i *releasableIndexer) Fields(ctx context.Context) (Document, error) {
	var inherited [][]model.ReleaseTag
	for _, parent := range i.deps.ParentCollections {
		if parent == nil {
			continue
		}
		tags, err := i.releaseTags(ctx, parent)
		if err != nil {
			return nil, err
		}
		inherited = append(inherited, tags)
	}

	own, err := i.releaseTags(ctx, i.deps.Record)
	if err != nil {
		return nil, err
	}

	decision := release.Resolve(inherited, own)
	doc := Document{}
	doc.SetStrings("released_to_ssim", decision.Released())
	for _, f := range release.DateFields {
		if t, ok := decision.Date(f.Destination); ok {
			doc.SetTime(f.Field, &t)
		}
	}
	return doc, nil
}

// releaseTags reads the directives of r. Without a release collaborator the
// directives carried on the record are used. A lookup failure is reported
// and treated as no directives for a parent collection; the record being
// indexed falls back to the directives it carries. A record that is not
// stored at all is not reported.
func (i *releasableIndexer) releaseTags(ctx context.Context, r *model.Record) ([]model.ReleaseTag, error) {
	if i.deps.Releases == nil {
		return r.Administrative.ReleaseTags, nil
	}
	own := r == i.deps.Record
	tags, err := i.deps.Releases.ReleaseTags(ctx, r.ExternalIdentifier)
	switch {
	case own && errors.GetCode(err) == errors.ErrCodeRecordNotFound:
		return r.Administrative.ReleaseTags, nil
	case errors.IsLookupFailure(err):
		i.deps.notify(ctx, fmt.Sprintf("Release tags for %s could not be retrieved", r.ExternalIdentifier))
		if own {
			return r.Administrative.ReleaseTags, nil
		}
		return nil, nil
	case err != nil:
		return nil, err
	}
	return tags, nil
}
