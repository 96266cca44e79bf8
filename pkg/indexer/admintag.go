package indexer

import (
	"context"
	"regexp"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// TagPartDelimiter separates the levels of an administrative tag.
const TagPartDelimiter = " : "

// specialTagTypes get a category field holding the remainder of the tag.
var specialTagTypes = map[string]bool{
	"Project":       true,
	"Registered By": true,
}

var whitespace = regexp.MustCompile(`\s`)

// AdministrativeTag indexes administrative tags and their hierarchical prefixes.
var AdministrativeTag = Descriptor{Name: "administrative_tag", New: newAdministrativeTagIndexer}

type administrativeTagIndexer struct {
	tags []string
}

func newAdministrativeTagIndexer(d Deps) FieldIndexer {
	return &administrativeTagIndexer{tags: d.AdministrativeTags}
}

func (a *administrativeTagIndexer) Fields(context.Context) (Document, error) {
	var all, nonProject, exploded []string
	categories := map[string][]string{}
	var categoryOrder []string

	for _, tag := range a.tags {
		head, rest, hasRest := strings.Cut(tag, TagPartDelimiter)
		prefix := whitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(head)), "_")

		all = append(all, tag)
		if prefix != "project" {
			nonProject = resolve.AppendUnique(nonProject, ExplodeTag(tag)...)
		}

		if !specialTagTypes[head] || !hasRest {
			continue
		}
		field := prefix + "_tag_ssim"
		if _, ok := categories[field]; !ok {
			categoryOrder = append(categoryOrder, field)
		}
		categories[field] = append(categories[field], strings.TrimSpace(rest))
		if prefix == "project" {
			exploded = resolve.AppendUnique(exploded, ExplodeTag(strings.TrimSpace(rest))...)
		}
	}

	doc := Document{}
	doc.SetStrings("tag_ssim", all)
	doc.SetStrings("tag_text_unstemmed_im", all)
	doc.SetStrings("exploded_nonproject_tag_ssim", nonProject)
	doc.SetStrings("exploded_project_tag_ssim", exploded)
	for _, field := range categoryOrder {
		doc.SetStrings(field, categories[field])
	}
	return doc, nil
}

// ExplodeTag returns every prefix of tag, inclusive of the full tag:
// "A : B : C" gives ["A", "A : B", "A : B : C"].
func ExplodeTag(tag string) []string {
	parts := strings.Split(tag, TagPartDelimiter)
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], TagPartDelimiter)
	}
	return out
}
