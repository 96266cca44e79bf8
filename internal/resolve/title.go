// Package resolve picks one canonical display value out of multiply
// represented descriptive metadata: titles, places, dates, names and
// subjects. Every function is pure.
package resolve

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Title part types.
const (
	partNonsorting = "nonsorting characters"
	partMainTitle  = "main title"
	partTitle      = "title"
	partSubtitle   = "subtitle"
	partName       = "part name"
	partNumber     = "part number"

	noteNonsortingCount = "nonsorting character count"
)

// titlePunctuation is stripped from both ends of every rendered title.
const titlePunctuation = " \t\r\n.,;:/\\"

// Title resolves the display title from a title list. It returns "" only
// when the list is empty.
func Title(titles []model.DescriptiveValue) string {
	t, ok := selectTitle(titles)
	if !ok {
		return ""
	}
	return renderTitle(t)
}

// FullTitles renders every top-level title, expanding parallel groups into
// their members. Duplicates are dropped.
func FullTitles(titles []model.DescriptiveValue) []string {
	var out []string
	for _, t := range titles {
		if len(t.ParallelValue) > 0 {
			for _, p := range t.ParallelValue {
				out = AppendUnique(out, renderTitle(p))
			}
			continue
		}
		out = AppendUnique(out, renderTitle(t))
	}
	return out
}

// MainTitles returns the main title (nonsorting characters plus main title,
// without subtitles or parts) of every title and parallel member.
func MainTitles(titles []model.DescriptiveValue) []string {
	var out []string
	for _, t := range titles {
		members := []model.DescriptiveValue{t}
		if len(t.ParallelValue) > 0 {
			members = t.ParallelValue
		}
		for _, m := range members {
			out = AppendUnique(out, mainTitle(m))
		}
	}
	return out
}

// selectTitle applies the preference order: primary entry, parallel group
// holding a primary member, first untyped or "title" entry, first entry.
func selectTitle(titles []model.DescriptiveValue) (model.DescriptiveValue, bool) {
	if len(titles) == 0 {
		return model.DescriptiveValue{}, false
	}
	for _, t := range titles {
		if t.IsPrimary() {
			return t, true
		}
	}
	for _, t := range titles {
		for _, p := range t.ParallelValue {
			if p.IsPrimary() {
				return t, true
			}
		}
	}
	for _, t := range titles {
		if t.Type == "" || t.Type == partTitle {
			return t, true
		}
	}
	return titles[0], true
}

func renderTitle(t model.DescriptiveValue) string {
	switch {
	case len(t.ParallelValue) > 0:
		selected, _ := selectTitle(t.ParallelValue)
		return renderTitle(selected)
	case len(t.StructuredValue) > 0:
		return CleanTitle(renderStructured(t.StructuredValue, nonsortingCount(t)))
	default:
		return CleanTitle(t.Value)
	}
}

// renderStructured concatenates typed parts in the order given. Parts of
// any other type are skipped. A part that is itself structured, as in a
// uniform title with a structured name, is rendered on its own.
// nonsorting is the declared nonsorting character count, or -1.
func renderStructured(parts []model.DescriptiveValue, nonsorting int) string {
	var title string
	partsDone := false

	for _, part := range parts {
		if len(part.StructuredValue) > 0 {
			return renderStructured(part.StructuredValue, nonsortingCount(part))
		}

		switch part.Type {
		case partNonsorting:
			title += part.Value + nonsortingPadding(part.Value, nonsorting)
		case partName, partNumber:
			if partsDone {
				continue
			}
			partsDone = true
			pnn := joinParts(parts)
			if title != "" {
				title = strings.TrimRight(title, " .,") + ". " + pnn + ". "
			} else {
				title = pnn + ". "
			}
		case partSubtitle:
			sub := strings.TrimSpace(strings.TrimPrefix(part.Value, ":"))
			if title != "" {
				title = strings.TrimRight(title, ". :") + " : " + sub
			} else {
				title = sub
			}
		case partMainTitle, partTitle:
			title += part.Value
		}
	}
	return title
}

// joinParts joins every part name and part number with ", ".
func joinParts(parts []model.DescriptiveValue) string {
	var names []string
	for _, p := range parts {
		if p.Type == partName || p.Type == partNumber {
			names = append(names, strings.TrimRight(p.Value, " .,"))
		}
	}
	return strings.Join(names, ", ")
}

func nonsortingPadding(value string, count int) string {
	if count >= 0 {
		pad := count - len([]rune(value))
		if pad <= 0 {
			return ""
		}
		return strings.Repeat(" ", pad)
	}
	if strings.HasSuffix(value, "'") || strings.HasSuffix(value, "-") {
		return ""
	}
	return " "
}

// nonsortingCount reads the nonsorting character count note of t, or -1.
func nonsortingCount(t model.DescriptiveValue) int {
	for _, n := range t.Note {
		if n.Type != noteNonsortingCount {
			continue
		}
		if c, err := strconv.Atoi(strings.TrimSpace(n.Value)); err == nil {
			return c
		}
	}
	return -1
}

func mainTitle(t model.DescriptiveValue) string {
	if len(t.StructuredValue) == 0 {
		return CleanTitle(t.Value)
	}
	count := nonsortingCount(t)
	var title string
	for _, part := range t.StructuredValue {
		switch part.Type {
		case partNonsorting:
			title += part.Value + nonsortingPadding(part.Value, count)
		case partMainTitle, partTitle:
			title += part.Value
		}
	}
	return CleanTitle(title)
}

// CleanTitle trims whitespace and the punctuation set .,;:/\ from both
// ends of s. CleanTitle(CleanTitle(s)) == CleanTitle(s).
func CleanTitle(s string) string {
	return strings.Trim(s, titlePunctuation)
}

// AppendUnique appends the values that are neither empty nor already in list.
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
