package resolve

import (
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// EventPlace resolves the display place of an event. A primary location
// wins when it yields a place; otherwise non-MARC-country values are joined with " : ", falling
// back to MARC country text, code, then URI.
func EventPlace(event *model.Event) string {
	if event == nil {
		return ""
	}
	locations := flatLocations(*event)
	for _, loc := range locations {
		if loc.IsPrimary() {
			if place := placeFrom([]model.DescriptiveValue{loc}); place != "" {
				return place
			}
			break
		}
	}
	return placeFrom(locations)
}

func flatLocations(event model.Event) []model.DescriptiveValue {
	var raw []model.DescriptiveValue
	if len(event.ParallelEvent) > 0 {
		for _, pe := range event.ParallelEvent {
			raw = append(raw, pe.Location...)
		}
	} else {
		raw = event.Location
	}

	var flat []model.DescriptiveValue
	for _, loc := range raw {
		switch {
		case len(loc.ParallelValue) > 0:
			flat = append(flat, loc.ParallelValue...)
		case len(loc.StructuredValue) > 0:
			flat = append(flat, loc.StructuredValue...)
		default:
			flat = append(flat, loc)
		}
	}
	return flat
}

func placeFrom(locations []model.DescriptiveValue) string {
	if len(locations) == 0 {
		return ""
	}

	var values []string
	for _, loc := range locations {
		if loc.Value != "" && !isMarcCountry(loc) {
			values = append(values, loc.Value)
		}
	}
	if len(values) > 0 {
		return strings.Join(values, " : ")
	}

	for _, loc := range locations {
		if isMarcCountry(loc) && loc.Value != "" {
			return loc.Value
		}
	}
	for _, loc := range locations {
		if isMarcCountry(loc) && loc.Code != "" {
			if name := CountryFromCode(loc.Code); name != "" {
				return name
			}
			break
		}
	}
	for _, loc := range locations {
		if strings.HasPrefix(loc.URI, MarcCountryURI) {
			return CountryFromURI(loc.URI)
		}
	}
	return ""
}

func isMarcCountry(loc model.DescriptiveValue) bool {
	return loc.SourceCode() == MarcCountryCode || loc.SourceURI() == MarcCountryURI
}
