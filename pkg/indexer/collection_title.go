package indexer

import (
	"context"

	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// CollectionTitle indexes the titles of the parent collections.
var CollectionTitle = Descriptor{Name: "collection_title", New: newCollectionTitleIndexer}

type collectionTitleIndexer struct {
	deps Deps
}

func newCollectionTitleIndexer(d Deps) FieldIndexer {
	return &collectionTitleIndexer{deps: d}
}

func (i *collectionTitleIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	var titles []string
	for _, parent := range i.deps.ParentCollections {
		if parent == nil {
			continue
		}
		titles = append(titles, resolve.Title(parent.Titles()))
	}
	doc.SetStrings("collection_title_tesim", titles)
	doc.SetStrings("collection_title_ssim", titles)
	return doc, nil
}
