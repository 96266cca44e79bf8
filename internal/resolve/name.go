package resolve

import (
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

const orcidBase = "https://orcid.org/"

// PrimaryAuthor returns the display name of the primary contributor, or of
// the first contributor when none is flagged primary.
func PrimaryAuthor(contributors []model.Contributor) string {
	if len(contributors) == 0 {
		return ""
	}
	for _, c := range contributors {
		if c.Status == model.StatusPrimary {
			return displayName(c)
		}
	}
	return displayName(contributors[0])
}

// Authors returns every contributor display name, in order, without duplicates.
func Authors(contributors []model.Contributor) []string {
	var out []string
	for _, c := range contributors {
		out = AppendUnique(out, displayName(c))
	}
	return out
}

// displayName renders the name of c: a display-typed name wins, otherwise
// the first name. Parallel contributors defer to their first member.
func displayName(c model.Contributor) string {
	if len(c.Name) == 0 && len(c.ParallelContributor) > 0 {
		return displayName(c.ParallelContributor[0])
	}
	if len(c.Name) == 0 {
		return ""
	}
	for _, n := range c.Name {
		if n.Type == "display" {
			return nameValue(n)
		}
	}
	return nameValue(c.Name[0])
}

func nameValue(n model.DescriptiveValue) string {
	switch {
	case n.Value != "":
		return strings.TrimSpace(n.Value)
	case len(n.ParallelValue) > 0:
		for _, p := range n.ParallelValue {
			if p.IsPrimary() {
				return nameValue(p)
			}
		}
		return nameValue(n.ParallelValue[0])
	case len(n.StructuredValue) > 0:
		return structuredName(n.StructuredValue)
	default:
		return ""
	}
}

// structuredName orders name parts as "surname, forename, life dates".
func structuredName(parts []model.DescriptiveValue) string {
	var surname, forename, dates string
	var other []string
	for _, p := range parts {
		switch p.Type {
		case "surname":
			surname = p.Value
		case "forename":
			forename = p.Value
		case "life dates":
			dates = p.Value
		default:
			if p.Value != "" {
				other = append(other, p.Value)
			}
		}
	}

	var out []string
	for _, v := range []string{surname, forename} {
		if v != "" {
			out = append(out, v)
		}
	}
	out = append(out, other...)
	if dates != "" {
		out = append(out, dates)
	}
	return strings.Join(out, ", ")
}

// ORCIDs returns the ORCID URIs attached to contributors.
func ORCIDs(contributors []model.Contributor) []string {
	var out []string
	for _, c := range contributors {
		for _, id := range c.Identifier {
			if !strings.EqualFold(id.Type, "orcid") {
				continue
			}
			out = AppendUnique(out, orcidURI(id))
		}
	}
	return out
}

func orcidURI(id model.DescriptiveValue) string {
	if id.URI != "" {
		return id.URI
	}
	if id.Value == "" {
		return ""
	}
	base := id.SourceURI()
	if base == "" {
		base = orcidBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + id.Value
}
