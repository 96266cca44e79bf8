// Package release decides which downstream destinations an object is
// released to, combining directives inherited from parent collections with
// the object's own directives.
package release

import (
	"time"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// NamedField maps a destination to the field carrying its effective
// release timestamp.
type NamedField struct {
	Destination string
	Field       string
}

// DateFields lists the destinations whose release date is surfaced as a
// separate field.
var DateFields = []NamedField{
	{Destination: "Searchworks", Field: "released_to_searchworks_dttsi"},
	{Destination: "Earthworks", Field: "released_to_earthworks_dttsi"},
}

// Decision is the effective release directive per destination, in order of
// first appearance.
type Decision struct {
	order     []string
	effective map[string]model.ReleaseTag
}

// Resolve merges collection-scoped directives from every parent collection
// with the item's self-scoped directives. Within a scope the latest
// directive per destination wins; item directives override inherited ones
// for the same destination regardless of date.
func Resolve(collectionTags [][]model.ReleaseTag, itemTags []model.ReleaseTag) Decision {
	d := Decision{effective: make(map[string]model.ReleaseTag)}

	var inherited []model.ReleaseTag
	for _, tags := range collectionTags {
		for _, tag := range tags {
			if tag.What == model.ScopeCollection {
				inherited = append(inherited, tag)
			}
		}
	}
	d.overlay(latest(inherited))

	var own []model.ReleaseTag
	for _, tag := range itemTags {
		if tag.What == model.ScopeSelf || tag.What == "" {
			own = append(own, tag)
		}
	}
	d.overlay(latest(own))

	return d
}

func (d *Decision) overlay(tags []model.ReleaseTag) {
	for _, tag := range tags {
		if _, seen := d.effective[tag.To]; !seen {
			d.order = append(d.order, tag.To)
		}
		d.effective[tag.To] = tag
	}
}

// Released returns the destinations whose effective directive releases.
func (d Decision) Released() []string {
	var out []string
	for _, to := range d.order {
		if d.effective[to].Release {
			out = append(out, to)
		}
	}
	return out
}

// Date returns the effective release date for a released destination.
func (d Decision) Date(destination string) (time.Time, bool) {
	tag, ok := d.effective[destination]
	if !ok || !tag.Release || tag.Date == nil {
		return time.Time{}, false
	}
	return tag.Date.UTC(), true
}

// Effective returns the effective directive for destination.
func (d Decision) Effective(destination string) (model.ReleaseTag, bool) {
	tag, ok := d.effective[destination]
	return tag, ok
}

// latest keeps the most recent directive per destination, ordered by first
// appearance of the destination. Dated directives beat undated ones; on
// equal dates the first encountered wins.
func latest(tags []model.ReleaseTag) []model.ReleaseTag {
	var order []string
	best := make(map[string]model.ReleaseTag)
	for _, tag := range tags {
		current, seen := best[tag.To]
		if !seen {
			order = append(order, tag.To)
			best[tag.To] = tag
			continue
		}
		if newer(tag, current) {
			best[tag.To] = tag
		}
	}

	out := make([]model.ReleaseTag, 0, len(order))
	for _, to := range order {
		out = append(out, best[to])
	}
	return out
}

func newer(candidate, current model.ReleaseTag) bool {
	switch {
	case candidate.Date == nil:
		return false
	case current.Date == nil:
		return true
	default:
		return candidate.Date.After(*current.Date)
	}
}
