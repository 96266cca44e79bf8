package indexer

import (
	"context"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// DefaultObjectRights indexes the access template an admin policy applies
// to the objects it governs.
var DefaultObjectRights = Descriptor{Name: "default_object_rights", New: newDefaultObjectRightsIndexer}

type defaultObjectRightsIndexer struct {
	template *model.Access
}

func newDefaultObjectRightsIndexer(d Deps) FieldIndexer {
	return &defaultObjectRightsIndexer{template: d.Record.Administrative.AccessTemplate}
}

func (i *defaultObjectRightsIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	if i.template == nil {
		return doc, nil
	}
	doc.SetStrings("default_rights_descriptions_ssim", RightsDescriptions(i.template))
	doc.SetStrings("use_statement_ssim", []string{i.template.UseAndReproductionStatement})
	doc.SetStrings("copyright_ssim", []string{i.template.Copyright})
	doc.SetString("use_license_machine_ssi", licenseCode(i.template.License))
	return doc, nil
}
