package indexer

import (
	"context"
	"time"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Embargo indexes the embargo state of an item.
var Embargo = Descriptor{Name: "embargo", New: newEmbargoIndexer}

type embargoIndexer struct {
	access *model.Access
	now    time.Time
}

func newEmbargoIndexer(d Deps) FieldIndexer {
	return &embargoIndexer{access: d.Record.Access, now: d.now()}
}

func (e *embargoIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	if e.access == nil || e.access.Embargo == nil {
		return doc, nil
	}
	release := e.access.Embargo.ReleaseDate
	if release.After(e.now) {
		doc.SetStrings("embargo_status_ssim", []string{"embargoed"})
	} else {
		doc.SetStrings("embargo_status_ssim", []string{"released"})
	}
	doc.SetStrings("embargo_release_dtsim", []string{FormatTime(release)})
	return doc, nil
}
