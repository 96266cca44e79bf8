package resolve

import (
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Subject types.
const (
	SubjectTopic = "topic"
	SubjectPlace = "place"
	SubjectTime  = "time"
)

// hierarchicalPlaceTypes are the structured parts of a hierarchical
// geographic subject.
var hierarchicalPlaceTypes = map[string]bool{
	"continent":             true,
	"country":               true,
	"province":              true,
	"region":                true,
	"state":                 true,
	"territory":             true,
	"county":                true,
	"city":                  true,
	"city section":          true,
	"island":                true,
	"area":                  true,
	"extraterrestrial area": true,
}

// Topics returns the values of subjects (and subject parts) whose type is
// filter, trailing punctuation removed, unique, in order.
func Topics(subjects []model.DescriptiveValue, filter string) []string {
	return collectSubjects(subjects, func(typ string) bool { return typ == filter })
}

// Geographic returns place subjects, including hierarchical geographic parts.
func Geographic(subjects []model.DescriptiveValue) []string {
	return collectSubjects(subjects, func(typ string) bool {
		return typ == SubjectPlace || hierarchicalPlaceTypes[typ]
	})
}

// Temporal returns time subjects. Structured ranges are joined with " - ".
func Temporal(subjects []model.DescriptiveValue) []string {
	var out []string
	var walk func(v model.DescriptiveValue, inherited string)
	walk = func(v model.DescriptiveValue, inherited string) {
		typ := v.Type
		if typ == "" {
			typ = inherited
		}
		if typ == SubjectTime && len(v.StructuredValue) > 0 {
			out = AppendUnique(out, dateValue(v))
			return
		}
		if typ == SubjectTime && v.Value != "" {
			out = AppendUnique(out, trimSubject(v.Value))
		}
		for _, p := range v.ParallelValue {
			walk(p, typ)
		}
		for _, p := range v.StructuredValue {
			walk(p, "")
		}
	}
	for _, s := range subjects {
		walk(s, "")
	}
	return out
}

func collectSubjects(subjects []model.DescriptiveValue, match func(string) bool) []string {
	var out []string
	var walk func(v model.DescriptiveValue, inherited string)
	walk = func(v model.DescriptiveValue, inherited string) {
		typ := v.Type
		if typ == "" {
			typ = inherited
		}
		if v.Value != "" && match(typ) {
			out = AppendUnique(out, trimSubject(v.Value))
		}
		for _, p := range v.ParallelValue {
			walk(p, typ)
		}
		for _, p := range v.StructuredValue {
			walk(p, "")
		}
	}
	for _, s := range subjects {
		walk(s, "")
	}
	return out
}

func trimSubject(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " ,;.")
}
