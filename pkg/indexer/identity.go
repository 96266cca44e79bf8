package indexer

import (
	"context"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Catalog names on catalog links.
const (
	CatalogFolio         = "folio"
	CatalogPreviousFolio = "previous folio"
)

// IdentityMetadata indexes object type, source id, barcode, catalog and DOI
// identifiers.
var IdentityMetadata = Descriptor{Name: "identity_metadata", New: newIdentityMetadataIndexer}

type identityMetadataIndexer struct {
	record *model.Record
}

func newIdentityMetadataIndexer(d Deps) FieldIndexer {
	return &identityMetadataIndexer{record: d.Record}
}

func (i *identityMetadataIndexer) Fields(context.Context) (Document, error) {
	kind := i.record.Kind()
	ident := i.record.Identification

	doc := Document{}
	doc.SetStrings("objectType_ssim", []string{string(kind)})
	if kind == model.KindAdminPolicy || ident == nil {
		return doc, nil
	}

	sourceID := ident.SourceID
	var sourceIDValue string
	if _, v, ok := strings.Cut(sourceID, ":"); ok {
		sourceIDValue = v
	}
	barcode := ident.Barcode
	if kind == model.KindCollection {
		barcode = ""
	}
	var doi string
	if kind == model.KindItem {
		doi = ident.DOI
	}

	var hrid string
	var previous []string
	for _, link := range ident.CatalogLinks {
		switch link.Catalog {
		case CatalogFolio:
			if hrid == "" {
				hrid = link.CatalogRecordID
			}
		case CatalogPreviousFolio:
			previous = append(previous, link.CatalogRecordID)
		}
	}

	var prefixed []string
	if sourceID != "" {
		prefixed = append(prefixed, sourceID)
	}
	if barcode != "" {
		prefixed = append(prefixed, "barcode:"+barcode)
	}
	if hrid != "" {
		prefixed = append(prefixed, "folio:"+hrid)
	}

	doc.SetStrings("dor_id_tesim", append([]string{sourceIDValue, barcode, hrid}, previous...))
	doc.SetStrings("identifier_ssim", prefixed)
	doc.SetStrings("identifier_tesim", prefixed)
	doc.SetStrings("barcode_id_ssim", []string{barcode})
	doc.SetString("source_id_ssi", sourceID)
	doc.SetString("source_id_text_nostem_i", sourceID)
	doc.SetStrings("folio_instance_hrid_ssim", []string{hrid})
	doc.SetStrings("doi_ssim", []string{doi})
	return doc, nil
}
