package resolve

import (
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// SearchText flattens every textual value of a description into one
// space-separated string, in description order. Codes and URIs are skipped.
func SearchText(desc *model.Description) string {
	if desc == nil {
		return ""
	}

	var parts []string
	add := func(values []model.DescriptiveValue) {
		for _, v := range values {
			parts = appendValues(parts, v)
		}
	}
	var addContributor func(c model.Contributor)
	addContributor = func(c model.Contributor) {
		add(c.Name)
		add(c.Note)
		for _, pc := range c.ParallelContributor {
			addContributor(pc)
		}
	}

	add(desc.Title)
	for _, c := range desc.Contributor {
		addContributor(c)
	}
	for _, e := range desc.Event {
		for _, fe := range e.Flatten() {
			add(fe.Date)
			add(fe.Location)
			add(fe.Note)
			for _, c := range fe.Contributor {
				addContributor(c)
			}
		}
	}
	add(desc.Form)
	for _, l := range desc.Language {
		if l.Value != "" {
			parts = append(parts, l.Value)
		}
	}
	add(desc.Note)
	add(desc.Identifier)
	add(desc.Subject)

	return strings.Join(parts, " ")
}

func appendValues(parts []string, v model.DescriptiveValue) []string {
	if s := strings.TrimSpace(v.Value); s != "" {
		parts = append(parts, s)
	}
	for _, group := range [][]model.DescriptiveValue{v.StructuredValue, v.ParallelValue, v.GroupedValue} {
		for _, child := range group {
			parts = appendValues(parts, child)
		}
	}
	return parts
}
