package indexer

import (
	"context"
	"path"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Basic indexes identity, version, label and relationship fields.
var Basic = Descriptor{Name: "basic", New: newBasicIndexer}

type basicIndexer struct {
	record *model.Record
}

func newBasicIndexer(d Deps) FieldIndexer {
	return &basicIndexer{record: d.Record}
}

func (b *basicIndexer) Fields(context.Context) (Document, error) {
	r := b.record
	doc := Document{}
	doc.SetString("id", r.ExternalIdentifier)
	doc.SetInt("current_version_isi", r.Version)
	doc.SetStrings("obj_label_tesim", []string{r.Label})
	doc.SetTime("modified_latest_dttsi", r.Modified)
	doc.SetTime("created_at_dttsi", r.Created)
	doc.SetStrings("is_governed_by_ssim", []string{r.Administrative.HasAdminPolicy})
	doc.SetStrings("is_member_of_collection_ssim", r.MemberOf())
	if r.IsItem() {
		doc.SetStrings("content_type_ssim", []string{path.Base(r.Type)})
	}
	return doc, nil
}
