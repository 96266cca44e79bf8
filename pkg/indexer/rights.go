package indexer

import (
	"context"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Rights indexes access rights, use statement, copyright and license.
var Rights = Descriptor{Name: "rights", New: newRightsIndexer}

// licenseCodes maps license URIs to machine-readable codes.
var licenseCodes = map[string]string{
	"https://creativecommons.org/licenses/by/4.0/legalcode":       "CC-BY-4.0",
	"https://creativecommons.org/licenses/by-sa/4.0/legalcode":    "CC-BY-SA-4.0",
	"https://creativecommons.org/licenses/by-nd/4.0/legalcode":    "CC-BY-ND-4.0",
	"https://creativecommons.org/licenses/by-nc/4.0/legalcode":    "CC-BY-NC-4.0",
	"https://creativecommons.org/licenses/by-nc-sa/4.0/legalcode": "CC-BY-NC-SA-4.0",
	"https://creativecommons.org/licenses/by-nc-nd/4.0/legalcode": "CC-BY-NC-ND-4.0",
	"https://creativecommons.org/publicdomain/zero/1.0/legalcode": "CC0-1.0",
	"https://creativecommons.org/publicdomain/mark/1.0/":          "PDM",
	"https://opendatacommons.org/licenses/by/1-0/":                "ODC-By-1.0",
	"https://opendatacommons.org/licenses/odbl/1-0/":              "ODbL-1.0",
	"https://opendatacommons.org/licenses/pddl/1-0/":              "PDDL-1.0",
	"https://www.gnu.org/licenses/gpl-3.0-standalone.html":        "GPL-3.0",
	"https://opensource.org/licenses/MIT":                         "MIT",
	"https://opensource.org/licenses/Apache-2.0":                  "Apache-2.0",
}

type rightsIndexer struct {
	access *model.Access
}

func newRightsIndexer(d Deps) FieldIndexer {
	return &rightsIndexer{access: d.Record.Access}
}

func (r *rightsIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	if r.access == nil {
		return doc, nil
	}
	doc.SetStrings("rights_descriptions_ssim", RightsDescriptions(r.access))
	doc.SetStrings("use_statement_ssim", []string{r.access.UseAndReproductionStatement})
	doc.SetStrings("copyright_ssim", []string{r.access.Copyright})
	doc.SetString("use_license_machine_ssi", licenseCode(r.access.License))
	return doc, nil
}

// licenseCode returns the machine-readable code of a license URI. Unknown
// URIs are returned unchanged.
func licenseCode(uri string) string {
	if code, ok := licenseCodes[uri]; ok {
		return code
	}
	return uri
}

// RightsDescriptions summarizes view and download rights, e.g. "world",
// "stanford", "world (no-download)", "location: music", "dark".
func RightsDescriptions(a *model.Access) []string {
	switch a.View {
	case "", "dark":
		return []string{"dark"}
	case "citation-only":
		return []string{"citation"}
	case "location-based":
		return []string{"location: " + a.Location}
	}

	download := a.Download
	if download == "" {
		download = a.View
	}
	switch {
	case download == a.View:
		return []string{a.View}
	case download == "none":
		return []string{a.View + " (no-download)"}
	case download == "location-based":
		return []string{a.View + " (no-download)", "location: " + a.Location}
	default:
		return []string{download, a.View + " (no-download)"}
	}
}
