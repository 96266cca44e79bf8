package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/cache"
	dorerrors "github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
)

func TestComposite_Document(t *testing.T) {
	// Given: a descriptive and an identifiable indexer over one item
	repo := repository.NewMemory()
	repo.PutRecord(newAdminPolicy(apoID, "test admin policy"))
	rec := newItem("Test item")
	rec.Description.Subject = []model.DescriptiveValue{{Type: "topic", Value: "word"}}

	composite := NewComposite(DescriptiveMetadata, Identifiable)

	// When
	doc, err := composite.New(Deps{
		ID:       itemID,
		Record:   rec,
		Records:  repo,
		Tags:     repo,
		Cache:    cache.New(),
		Reporter: notify.Discard,
	}).Document(context.Background())

	// Then: the merged fields of both
	require.NoError(t, err)
	assert.Equal(t, Document{
		"descriptive_tiv":           "Test item word",
		"descriptive_teiv":          "Test item word",
		"descriptive_text_nostem_i": "Test item word",
		"main_title_tenim":          []string{"Test item"},
		"full_title_tenim":          []string{"Test item"},
		"display_title_ss":          "Test item",
		"sw_display_title_tesim":    "Test item",
		"nonhydrus_apo_title_ssim":  []string{"test admin policy"},
		"apo_title_ssim":            []string{"test admin policy"},
		"metadata_source_ssim":      []string{"DOR"},
		"druid_bare_ssi":            "xx999xx9999",
		"druid_prefixed_ssi":        itemID,
		"objectId_tesim":            []string{itemID, "xx999xx9999"},
		"topic_ssim":                []string{"word"},
		"topic_tesim":               []string{"word"},
	}, doc)
}

func TestComposite_LaterIndexerWins(t *testing.T) {
	first := Descriptor{Name: "first", New: func(Deps) FieldIndexer {
		return FieldIndexerFunc(func(context.Context) (Document, error) {
			return Document{"shared_ssi": "first", "first_ssi": "a"}, nil
		})
	}}
	second := Descriptor{Name: "second", New: func(Deps) FieldIndexer {
		return FieldIndexerFunc(func(context.Context) (Document, error) {
			return Document{"shared_ssi": "second"}, nil
		})
	}}

	doc, err := NewComposite(first, second).New(Deps{ID: itemID}).Document(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Document{"shared_ssi": "second", "first_ssi": "a"}, doc)
}

func TestComposite_FirstErrorAborts(t *testing.T) {
	// Given: a failing indexer between two good ones
	ran := false
	boom := errors.New("boom")
	failing := Descriptor{Name: "failing", New: func(Deps) FieldIndexer {
		return FieldIndexerFunc(func(context.Context) (Document, error) { return nil, boom })
	}}
	after := Descriptor{Name: "after", New: func(Deps) FieldIndexer {
		return FieldIndexerFunc(func(context.Context) (Document, error) {
			ran = true
			return Document{}, nil
		})
	}}

	// When
	_, err := NewComposite(Basic, failing, after).
		New(Deps{ID: itemID, Record: newItem("Test item")}).
		Document(context.Background())

	// Then: no partial document, the error names the indexer
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)

	var ae *dorerrors.AmanError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, dorerrors.ErrCodeIndexFailed, ae.Code)
	assert.Equal(t, "failing", ae.Details["indexer"])
	assert.Equal(t, itemID, ae.Details["id"])
}

func TestComposite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewComposite(Basic).New(Deps{ID: itemID, Record: newItem("Test item")}).Document(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposite_Names(t *testing.T) {
	assert.Equal(t, []string{"basic", "identifiable"}, NewComposite(Basic, Identifiable).Names())
}

func TestPipelineFor(t *testing.T) {
	tests := []struct {
		kind model.Kind
		want *Composite
	}{
		{model.KindAdminPolicy, AdminPolicyPipeline},
		{model.KindCollection, CollectionPipeline},
		{model.KindItem, ItemPipeline},
		{model.KindAgreement, ItemPipeline},
		{model.Kind("unknown"), ItemPipeline},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Same(t, tt.want, PipelineFor(tt.kind))
		})
	}
}

func TestItemPipeline_Order(t *testing.T) {
	assert.Equal(t, []string{
		"administrative_tag", "basic", "rights", "identity_metadata", "descriptive_metadata",
		"embargo", "object_files", "identifiable", "collection_title", "releasable", "workflows",
	}, ItemPipeline.Names())
}

func TestAdminPolicyPipeline_Order(t *testing.T) {
	assert.Equal(t, []string{
		"administrative_tag", "basic", "role_metadata", "default_object_rights",
		"identity_metadata", "descriptive_metadata", "identifiable", "workflows",
	}, AdminPolicyPipeline.Names())
}
