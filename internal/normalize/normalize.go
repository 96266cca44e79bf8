// Package normalize derives the legacy bibliographic facet values
// (publication year, topic, genre, language and era facets) from a
// record description.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// Normalized holds the secondary facet values derived from a description.
type Normalized struct {
	PubYear    int
	TopicFacet []string
	Genres     []string
	Languages  []string
	Eras       []string
}

// Transformer maps a description into normalized facet values.
// Implementations must be pure.
type Transformer interface {
	Transform(desc *model.Description, id string) (*Normalized, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(desc *model.Description, id string) (*Normalized, error)

// Transform calls f.
func (f TransformerFunc) Transform(desc *model.Description, id string) (*Normalized, error) {
	return f(desc, id)
}

// Default returns the built-in transformer.
func Default() Transformer {
	return TransformerFunc(transform)
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// topicFacetTypes are the subject types contributing to the topic facet.
var topicFacetTypes = []string{
	resolve.SubjectTopic, "person", "organization", "family", "conference", "name", "title", "occupation",
}

var genreLabels = map[string]string{
	"thesis":                 "Thesis/Dissertation",
	"conference publication": "Conference proceedings",
	"government publication": "Government document",
	"technical report":       "Technical report",
}

func transform(desc *model.Description, _ string) (*Normalized, error) {
	n := &Normalized{}
	if desc == nil {
		return n, nil
	}

	n.PubYear = pubYear(desc.Event)
	for _, typ := range topicFacetTypes {
		n.TopicFacet = resolve.AppendUnique(n.TopicFacet, resolve.Topics(desc.Subject, typ)...)
	}
	n.Genres = genres(desc.Form)
	n.Languages = languages(desc.Language)
	n.Eras = resolve.Temporal(desc.Subject)
	return n, nil
}

// pubYear prefers the publication date, then the creation date, then the
// first year found on any event.
func pubYear(events []model.Event) int {
	for _, typ := range []string{resolve.EventPublication, resolve.EventCreation} {
		if y := year(resolve.EventDate(resolve.SelectEvent(events, typ), typ)); y > 0 {
			return y
		}
	}
	for _, e := range events {
		for _, fe := range e.Flatten() {
			for _, d := range fe.Date {
				if y := year(d.Value); y > 0 {
					return y
				}
			}
		}
	}
	return 0
}

func year(s string) int {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return y
}

func genres(forms []model.DescriptiveValue) []string {
	var out []string
	for _, f := range forms {
		for _, v := range f.Flatten() {
			if v.Type != "genre" && f.Type != "genre" {
				continue
			}
			value := strings.TrimSpace(v.Value)
			if value == "" {
				continue
			}
			if label, ok := genreLabels[strings.ToLower(value)]; ok {
				value = label
			} else {
				value = strings.ToUpper(value[:1]) + value[1:]
			}
			out = resolve.AppendUnique(out, value)
		}
	}
	return out
}

func languages(langs []model.Language) []string {
	var out []string
	for _, l := range langs {
		name := l.Value
		if name == "" {
			name = languageNames[strings.ToLower(l.Code)]
		}
		out = resolve.AppendUnique(out, name)
	}
	return out
}
