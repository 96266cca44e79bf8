package indexer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/repository"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// CurrentCatalog is the only catalog counted as a metadata source.
const CurrentCatalog = CatalogFolio

// HydrusTag marks governing policies created by the Hydrus application.
const HydrusTag = "Project : Hydrus"

// Identifiable indexes identifier forms, metadata source and the title of
// the governing policy.
var Identifiable = Descriptor{Name: "identifiable", New: newIdentifiableIndexer}

type identifiableIndexer struct {
	deps Deps
}

func newIdentifiableIndexer(d Deps) FieldIndexer {
	return &identifiableIndexer{deps: d}
}

func (i *identifiableIndexer) Fields(ctx context.Context) (Document, error) {
	r := i.deps.Record
	doc := Document{}

	if apo := r.Administrative.HasAdminPolicy; apo != "" {
		related, err := i.adminPolicy(ctx, apo)
		if err != nil {
			return nil, err
		}
		if related.Hydrus {
			doc.SetStrings("hydrus_apo_title_ssim", []string{related.Title})
		} else {
			doc.SetStrings("nonhydrus_apo_title_ssim", []string{related.Title})
		}
		doc.SetStrings("apo_title_ssim", []string{related.Title})
	}

	if r.Kind() != model.KindAdminPolicy {
		doc.SetStrings("metadata_source_ssim", metadataSources(r.Identification))
	}
	doc.SetString("druid_prefixed_ssi", r.ExternalIdentifier)
	doc.SetString("druid_bare_ssi", r.BareID())
	doc.SetStrings("objectId_tesim", []string{r.ExternalIdentifier, r.BareID()})
	return doc, nil
}

// adminPolicy resolves the governing policy through the shared cache. A
// policy that cannot be found is reported and cached as its raw identifier.
func (i *identifiableIndexer) adminPolicy(ctx context.Context, apo string) (cache.RelatedObject, error) {
	load := func(ctx context.Context) (cache.RelatedObject, error) {
		related, err := loadAdminPolicy(ctx, i.deps.Records, i.deps.Tags, apo)
		if errors.IsLookupFailure(err) {
			i.deps.notify(ctx, fmt.Sprintf("Bad association found on %s. %s could not be found", i.deps.ID, apo))
			return cache.RelatedObject{Title: apo}, nil
		}
		return related, err
	}
	if i.deps.Cache == nil {
		return load(ctx)
	}
	return i.deps.Cache.AdminPolicies.GetOrLoad(ctx, apo, load)
}

func loadAdminPolicy(ctx context.Context, records repository.RecordFinder, tags repository.TagFinder, apo string) (cache.RelatedObject, error) {
	if records == nil {
		return cache.RelatedObject{}, errors.NotFound(apo)
	}
	rec, err := records.Find(ctx, apo)
	if err != nil {
		return cache.RelatedObject{}, err
	}
	related := cache.RelatedObject{Title: resolve.Title(rec.Titles())}
	if tags != nil {
		list, err := tags.AdministrativeTags(ctx, apo)
		if err != nil {
			return cache.RelatedObject{}, err
		}
		related.Hydrus = slices.Contains(list, HydrusTag)
	}
	return related, nil
}

func metadataSources(ident *model.Identification) []string {
	if ident == nil {
		return []string{"DOR"}
	}
	var catalogs []string
	for _, link := range ident.CatalogLinks {
		if link.Catalog == CurrentCatalog && !slices.Contains(catalogs, link.Catalog) {
			catalogs = append(catalogs, link.Catalog)
		}
	}
	if len(catalogs) == 0 {
		return []string{"DOR"}
	}
	for n, c := range catalogs {
		catalogs[n] = strings.ToUpper(c[:1]) + c[1:]
	}
	return catalogs
}
