package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/dorindex/internal/model"
)

func TestCollectionTitle_NoCollections(t *testing.T) {
	doc := fields(t, CollectionTitle, Deps{Record: newItem("Test item")})
	assert.Empty(t, doc)
}

func TestCollectionTitle_MultipleCollections(t *testing.T) {
	// Given: two resolved parent collections
	parents := []*model.Record{
		newCollection("druid:bc999df2323", "Collection One"),
		newCollection("druid:bd999df2323", "Collection Two"),
	}

	// When
	doc := fields(t, CollectionTitle, Deps{Record: newItem("Test item"), ParentCollections: parents})

	// Then
	want := []string{"Collection One", "Collection Two"}
	assert.Equal(t, Document{
		"collection_title_tesim": want,
		"collection_title_ssim":  want,
	}, doc)
}
