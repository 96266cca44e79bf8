package resolve

import (
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Event types used for facet derivation.
const (
	EventCreation    = "creation"
	EventPublication = "publication"
)

// SelectEvent picks the event best describing eventType: an event of that
// type with a primary date of that type, then one with any date of that
// type, then any event carrying such a date, then the first event of the
// type. Returns nil when nothing matches.
func SelectEvent(events []model.Event, eventType string) *model.Event {
	var typed []int
	for i, e := range events {
		if e.Type == eventType {
			typed = append(typed, i)
		}
	}

	for _, i := range typed {
		for _, d := range eventDates(events[i], eventType) {
			if d.IsPrimary() {
				return &events[i]
			}
		}
	}
	for _, i := range typed {
		if len(eventDates(events[i], eventType)) > 0 {
			return &events[i]
		}
	}
	for i := range events {
		if len(eventDates(events[i], eventType)) > 0 {
			return &events[i]
		}
	}
	if len(typed) > 0 {
		return &events[typed[0]]
	}
	return nil
}

// EventDate renders the date of dateType from event: a primary date
// wins, otherwise the first. Structured ranges are joined with " - ".
func EventDate(event *model.Event, dateType string) string {
	if event == nil {
		return ""
	}
	dates := eventDates(*event, dateType)
	if len(dates) == 0 {
		return ""
	}
	selected := dates[0]
	for _, d := range dates {
		if d.IsPrimary() {
			selected = d
			break
		}
	}
	return dateValue(selected)
}

// eventDates returns the dates of event (and its parallel events) whose type
// is dateType. Untyped dates count when the event itself is of dateType.
func eventDates(event model.Event, dateType string) []model.DescriptiveValue {
	matches := func(typ string) bool {
		return typ == dateType || (typ == "" && event.Type == dateType)
	}

	var out []model.DescriptiveValue
	for _, e := range event.Flatten() {
		for _, d := range e.Date {
			if len(d.StructuredValue) > 0 {
				if matches(d.Type) {
					out = append(out, d)
				}
				continue
			}
			for _, fd := range d.Flatten() {
				typ := fd.Type
				if typ == "" {
					typ = d.Type
				}
				if matches(typ) {
					out = append(out, fd)
				}
			}
		}
	}
	return out
}

func dateValue(d model.DescriptiveValue) string {
	if len(d.StructuredValue) == 0 {
		return strings.TrimSpace(d.Value)
	}
	var parts []string
	for _, p := range d.StructuredValue {
		if v := strings.TrimSpace(p.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " - ")
}

// PublisherName joins the names of contributors holding the publisher role
// across publication events with " : ". Parallel events contribute their
// first member only.
func PublisherName(events []model.Event) string {
	var names []string
	for _, e := range events {
		if len(e.ParallelEvent) > 0 {
			e = e.ParallelEvent[0]
		}
		if !isPublication(e) {
			continue
		}
		for _, c := range e.Contributor {
			if !hasRole(c, "publisher", "pbl") {
				continue
			}
			if name := displayName(c); name != "" {
				names = append(names, name)
			}
		}
	}
	return strings.Join(names, " : ")
}

func isPublication(e model.Event) bool {
	if e.Type == EventPublication {
		return true
	}
	for _, d := range e.Date {
		if d.Type == EventPublication {
			return true
		}
	}
	return false
}

func hasRole(c model.Contributor, value, code string) bool {
	for _, r := range c.Role {
		if strings.EqualFold(r.Value, value) || r.Code == code {
			return true
		}
	}
	return false
}
