package indexer

import (
	"slices"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

const modsResourceTypes = "MODS resource types"

// resourceFormats maps resource type values to format facet values.
var resourceFormats = map[string]string{
	"cartographic":               "Map",
	"manuscript":                 "Archive/Manuscript",
	"mixed material":             "Archive/Manuscript",
	"moving image":               "Video",
	"notated music":              "Music score",
	"software, multimedia":       "Software/Multimedia",
	"sound recording-musical":    "Music recording",
	"sound recording-nonmusical": "Sound recording",
	"sound recording":            "Sound recording",
	"still image":                "Image",
	"three dimensional object":   "Object",
	"text":                       "Book",
}

// formSet answers format questions about the forms and event notes of a
// description.
type formSet struct {
	forms []model.DescriptiveValue
	notes []model.DescriptiveValue
}

func newFormSet(desc *model.Description) formSet {
	fs := formSet{forms: desc.Form}
	for _, e := range desc.Event {
		for _, fe := range e.Flatten() {
			for _, n := range fe.Note {
				fs.notes = append(fs.notes, n.Flatten()...)
			}
		}
	}
	return fs
}

// swFormat derives the format facet. The first matching combination wins;
// otherwise resource types are mapped and genres appended.
func (f formSet) swFormat() []string {
	switch {
	case f.resourceType("software, multimedia") && f.resourceType("cartographic"):
		return []string{"Map"}
	case f.resourceType("software, multimedia") && f.genre("dataset"):
		return []string{"Dataset"}
	case f.resourceType("text") && f.genre("archived website"):
		return []string{"Archived website"}
	case f.resourceType("text") && f.issuance("monographic"):
		return []string{"Book"}
	case f.resourceType("text") && (f.issuance("continuing") || f.issuance("serial") || f.frequency()):
		return []string{"Journal/Periodical"}
	}

	var formats []string
	for _, form := range f.flatFormsFor("resource type") {
		formats = resolve.AppendUnique(formats, resourceFormats[strings.ToLower(form.Value)])
	}
	if slices.Contains(formats, "Archive/Manuscript") {
		formats = remove(formats, "Book")
	}
	if len(formats) == 1 && formats[0] == "Book" {
		return formats
	}

	var genres []string
	for _, form := range f.flatFormsFor("genre") {
		if form.Value != "" {
			genres = resolve.AppendUnique(genres, capitalize(form.Value))
		}
	}
	return append(formats, genres...)
}

// resourceTypes lists MODS resource type values other than collection and
// manuscript.
func (f formSet) resourceTypes() []string {
	var out []string
	for _, form := range f.forms {
		if form.SourceValue() != modsResourceTypes {
			continue
		}
		if form.Value == "collection" || form.Value == "manuscript" {
			continue
		}
		out = append(out, form.Value)
	}
	return out
}

func (f formSet) flatFormsFor(typ string) []model.DescriptiveValue {
	var out []model.DescriptiveValue
	for _, form := range f.forms {
		if form.Type == typ {
			out = append(out, form.Flatten()...)
			continue
		}
		for _, v := range form.Flatten() {
			if v.Type == typ {
				out = append(out, v)
			}
		}
	}
	return out
}

func (f formSet) resourceType(value string) bool {
	for _, form := range f.flatFormsFor("resource type") {
		if form.Value == value {
			return true
		}
	}
	return false
}

func (f formSet) genre(value string) bool {
	for _, form := range f.flatFormsFor("genre") {
		if form.Value == value {
			return true
		}
	}
	return false
}

func (f formSet) issuance(value string) bool {
	for _, n := range f.notes {
		if n.Type == "issuance" && n.Value == value {
			return true
		}
	}
	return false
}

func (f formSet) frequency() bool {
	for _, n := range f.notes {
		if n.Type == "frequency" {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
