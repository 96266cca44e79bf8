package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
)

func identifiableDeps(repo *repository.Memory, rec *model.Record, reporter notify.Reporter) Deps {
	return Deps{
		ID:       rec.ExternalIdentifier,
		Record:   rec,
		Records:  repo,
		Tags:     repo,
		Cache:    cache.New(),
		Reporter: reporter,
	}
}

func TestIdentifiable_AdminPolicyFound(t *testing.T) {
	// Given: a resolvable governing policy
	repo := repository.NewMemory()
	repo.PutRecord(newAdminPolicy(apoID, "collection title"))

	// When
	doc := fields(t, Identifiable, identifiableDeps(repo, newItem("Test item"), notify.Discard))

	// Then
	assert.Equal(t, Document{
		"apo_title_ssim":           []string{"collection title"},
		"nonhydrus_apo_title_ssim": []string{"collection title"},
		"metadata_source_ssim":     []string{"DOR"},
		"druid_prefixed_ssi":       itemID,
		"druid_bare_ssi":           "xx999xx9999",
		"objectId_tesim":           []string{itemID, "xx999xx9999"},
	}, doc)
}

func TestIdentifiable_HydrusAdminPolicy(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutRecord(newAdminPolicy(apoID, "Hydrus APO"))
	repo.PutTags(apoID, []string{HydrusTag})

	doc := fields(t, Identifiable, identifiableDeps(repo, newItem("Test item"), notify.Discard))

	assert.Equal(t, []string{"Hydrus APO"}, doc.Strings("hydrus_apo_title_ssim"))
	assert.NotContains(t, doc, "nonhydrus_apo_title_ssim")
}

func TestIdentifiable_AdminPolicyNotFound(t *testing.T) {
	// Given: a governing policy missing from the repository
	repo := repository.NewMemory()
	rec := &notify.Recorder{}
	deps := identifiableDeps(repo, newItem("Test item"), rec)

	// When
	doc := fields(t, Identifiable, deps)

	// Then: the raw identifier stands in for the title and the problem is reported
	assert.Equal(t, []string{apoID}, doc.Strings("apo_title_ssim"))
	assert.Equal(t, []string{apoID}, doc.Strings("nonhydrus_apo_title_ssim"))
	assert.Equal(t, []string{
		"Bad association found on druid:xx999xx9999. druid:gf999hb9999 could not be found",
	}, rec.Messages())

	// And: the degraded value is cached
	_ = fields(t, Identifiable, deps)
	assert.Equal(t, 1, repo.FindCount(apoID))
	assert.Len(t, rec.Messages(), 1)
}

func TestIdentifiable_AdminPolicyCachedAcrossRecords(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutRecord(newAdminPolicy(apoID, "APO"))
	shared := cache.New()

	for range 3 {
		deps := identifiableDeps(repo, newItem("Test item"), notify.Discard)
		deps.Cache = shared
		_ = fields(t, Identifiable, deps)
	}

	assert.Equal(t, 1, repo.FindCount(apoID))
}

func TestIdentifiable_UnexpectedFailureIsFatal(t *testing.T) {
	repo := repository.NewMemory()
	repo.Fail(apoID, errors.InternalError("connection reset", nil))

	_, err := Identifiable.New(identifiableDeps(repo, newItem("Test item"), notify.Discard)).Fields(context.Background())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
}

func TestIdentifiable_MetadataSource(t *testing.T) {
	tests := []struct {
		name  string
		ident *model.Identification
		want  []string
	}{
		{"folio link", &model.Identification{CatalogLinks: []model.CatalogLink{
			{Catalog: CatalogFolio, CatalogRecordID: "a1234"},
		}}, []string{"Folio"}},
		{"no links", &model.Identification{}, []string{"DOR"}},
		{"previous links only", &model.Identification{CatalogLinks: []model.CatalogLink{
			{Catalog: CatalogPreviousFolio, CatalogRecordID: "a1234"},
		}}, []string{"DOR"}},
		{"no identification", nil, []string{"DOR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemory()
			repo.PutRecord(newAdminPolicy(apoID, "APO"))
			rec := newItem("Test item")
			rec.Identification = tt.ident

			doc := fields(t, Identifiable, identifiableDeps(repo, rec, notify.Discard))

			assert.Equal(t, tt.want, doc.Strings("metadata_source_ssim"))
		})
	}
}

func TestIdentifiable_AdminPolicyHasNoMetadataSource(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutRecord(newAdminPolicy("druid:zz000zz0000", "Parent APO"))
	rec := newAdminPolicy(apoID, "APO")
	rec.Administrative.HasAdminPolicy = "druid:zz000zz0000"

	doc := fields(t, Identifiable, identifiableDeps(repo, rec, notify.Discard))

	assert.NotContains(t, doc, "metadata_source_ssim")
	assert.Equal(t, []string{"Parent APO"}, doc.Strings("apo_title_ssim"))
}
