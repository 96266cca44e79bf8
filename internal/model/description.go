package model

// DescriptiveValue is the recursive value used for titles, forms,
// subjects, locations, dates, names, roles and notes.
type DescriptiveValue struct {
	Value           string             `json:"value,omitempty"`
	Type            string             `json:"type,omitempty"`
	Status          string             `json:"status,omitempty"`
	Code            string             `json:"code,omitempty"`
	URI             string             `json:"uri,omitempty"`
	Source          *Source            `json:"source,omitempty"`
	Encoding        *Source            `json:"encoding,omitempty"`
	StructuredValue []DescriptiveValue `json:"structuredValue,omitempty"`
	ParallelValue   []DescriptiveValue `json:"parallelValue,omitempty"`
	GroupedValue    []DescriptiveValue `json:"groupedValue,omitempty"`
	Note            []DescriptiveValue `json:"note,omitempty"`
	Qualifier       string             `json:"qualifier,omitempty"`
}

// StatusPrimary marks the preferred value among alternatives.
const StatusPrimary = "primary"

// IsPrimary reports whether the value carries primary status.
func (v DescriptiveValue) IsPrimary() bool {
	return v.Status == StatusPrimary
}

// Flatten returns the parallel, grouped or structured members of v,
// whichever is present first, or v itself.
func (v DescriptiveValue) Flatten() []DescriptiveValue {
	switch {
	case len(v.ParallelValue) > 0:
		return v.ParallelValue
	case len(v.GroupedValue) > 0:
		return v.GroupedValue
	case len(v.StructuredValue) > 0:
		return v.StructuredValue
	default:
		return []DescriptiveValue{v}
	}
}

// Source identifies a controlled vocabulary.
type Source struct {
	Code  string `json:"code,omitempty"`
	URI   string `json:"uri,omitempty"`
	Value string `json:"value,omitempty"`
}

// SourceCode returns the source code of v, or "".
func (v DescriptiveValue) SourceCode() string {
	if v.Source == nil {
		return ""
	}
	return v.Source.Code
}

// SourceURI returns the source URI of v, or "".
func (v DescriptiveValue) SourceURI() string {
	if v.Source == nil {
		return ""
	}
	return v.Source.URI
}

// SourceValue returns the source value of v, or "".
func (v DescriptiveValue) SourceValue() string {
	if v.Source == nil {
		return ""
	}
	return v.Source.Value
}

// Description is the descriptive metadata block of a record.
type Description struct {
	Title       []DescriptiveValue `json:"title,omitempty"`
	Contributor []Contributor      `json:"contributor,omitempty"`
	Event       []Event            `json:"event,omitempty"`
	Form        []DescriptiveValue `json:"form,omitempty"`
	Subject     []DescriptiveValue `json:"subject,omitempty"`
	Language    []Language         `json:"language,omitempty"`
	Note        []DescriptiveValue `json:"note,omitempty"`
	Identifier  []DescriptiveValue `json:"identifier,omitempty"`
	Purl        string             `json:"purl,omitempty"`
}

// Contributor is a person or organization related to the resource.
type Contributor struct {
	Name                []DescriptiveValue `json:"name,omitempty"`
	Type                string             `json:"type,omitempty"`
	Status              string             `json:"status,omitempty"`
	Role                []DescriptiveValue `json:"role,omitempty"`
	Identifier          []DescriptiveValue `json:"identifier,omitempty"`
	Note                []DescriptiveValue `json:"note,omitempty"`
	ParallelContributor []Contributor      `json:"parallelContributor,omitempty"`
}

// Event is something that happened to the resource (creation, publication, ...).
type Event struct {
	Type          string             `json:"type,omitempty"`
	DisplayLabel  string             `json:"displayLabel,omitempty"`
	Date          []DescriptiveValue `json:"date,omitempty"`
	Contributor   []Contributor      `json:"contributor,omitempty"`
	Location      []DescriptiveValue `json:"location,omitempty"`
	Note          []DescriptiveValue `json:"note,omitempty"`
	ParallelEvent []Event            `json:"parallelEvent,omitempty"`
}

// Flatten returns the parallel events of e, or e itself.
func (e Event) Flatten() []Event {
	if len(e.ParallelEvent) > 0 {
		return e.ParallelEvent
	}
	return []Event{e}
}

// Language of the resource content.
type Language struct {
	Code   string  `json:"code,omitempty"`
	Value  string  `json:"value,omitempty"`
	URI    string  `json:"uri,omitempty"`
	Source *Source `json:"source,omitempty"`
}
