// Package model defines the repository record consumed by the document
// builder. The JSON shape matches the repository's wire format.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

// Object type URIs.
const (
	TypeObject      = "https://cocina.sul.stanford.edu/models/object"
	TypeBook        = "https://cocina.sul.stanford.edu/models/book"
	TypeImage       = "https://cocina.sul.stanford.edu/models/image"
	TypeMap         = "https://cocina.sul.stanford.edu/models/map"
	TypeMedia       = "https://cocina.sul.stanford.edu/models/media"
	TypeDocument    = "https://cocina.sul.stanford.edu/models/document"
	TypeGeo         = "https://cocina.sul.stanford.edu/models/geo"
	TypeWebArchive  = "https://cocina.sul.stanford.edu/models/webarchive-seed"
	TypeAgreement   = "https://cocina.sul.stanford.edu/models/agreement"
	TypeCollection  = "https://cocina.sul.stanford.edu/models/collection"
	TypeAdminPolicy = "https://cocina.sul.stanford.edu/models/admin_policy"
)

// Kind is the coarse record variant that selects an indexing pipeline.
type Kind string

const (
	KindItem        Kind = "item"
	KindAgreement   Kind = "agreement"
	KindCollection  Kind = "collection"
	KindAdminPolicy Kind = "adminPolicy"
)

// DruidPrefix prefixes every external identifier.
const DruidPrefix = "druid:"

// Record is a versioned repository object: an item, collection or admin policy.
type Record struct {
	Type               string          `json:"type"`
	ExternalIdentifier string          `json:"externalIdentifier"`
	Label              string          `json:"label"`
	Version            int             `json:"version"`
	Created            *time.Time      `json:"created,omitempty"`
	Modified           *time.Time      `json:"modified,omitempty"`
	Access             *Access         `json:"access,omitempty"`
	Administrative     Administrative  `json:"administrative"`
	Description        *Description    `json:"description,omitempty"`
	Identification     *Identification `json:"identification,omitempty"`
	Structural         *Structural     `json:"structural,omitempty"`
}

// Kind maps the type URI onto a pipeline kind. Unknown types are items.
func (r *Record) Kind() Kind {
	switch r.Type {
	case TypeCollection:
		return KindCollection
	case TypeAdminPolicy:
		return KindAdminPolicy
	case TypeAgreement:
		return KindAgreement
	default:
		return KindItem
	}
}

// IsItem reports whether the record is a digital repository object
// (item or agreement).
func (r *Record) IsItem() bool {
	k := r.Kind()
	return k == KindItem || k == KindAgreement
}

// BareID returns the identifier without the druid prefix.
func (r *Record) BareID() string {
	return strings.TrimPrefix(r.ExternalIdentifier, DruidPrefix)
}

// Titles returns the description titles, or nil.
func (r *Record) Titles() []DescriptiveValue {
	if r.Description == nil {
		return nil
	}
	return r.Description.Title
}

// MemberOf returns the collection identifiers the record belongs to.
func (r *Record) MemberOf() []string {
	if r.Structural == nil {
		return nil
	}
	return r.Structural.IsMemberOf
}

// Validate checks the invariants every record must satisfy before indexing.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ExternalIdentifier) == "" {
		return errors.ValidationError("record has no external identifier", nil)
	}
	if r.Type == "" {
		return errors.ValidationError("record has no type", nil).
			WithDetail("id", r.ExternalIdentifier)
	}
	return nil
}

// LoadRecord decodes and validates a JSON record.
func LoadRecord(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("decode record: %v", err), err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Administrative holds the governing policy and release directives. Admin
// policies also carry their roles and the access template applied to new
// objects.
type Administrative struct {
	HasAdminPolicy string       `json:"hasAdminPolicy,omitempty"`
	ReleaseTags    []ReleaseTag `json:"releaseTags,omitempty"`
	Roles          []Role       `json:"roles,omitempty"`
	AccessTemplate *Access      `json:"accessTemplate,omitempty"`
}

// Role grants a named permission to workgroups and people.
type Role struct {
	Name    string       `json:"name"`
	Members []RoleMember `json:"members,omitempty"`
}

// RoleMember is a workgroup or person, e.g. {workgroup, sdr:psm-staff}.
type RoleMember struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Identification holds source identifiers and catalog links.
type Identification struct {
	SourceID     string        `json:"sourceId,omitempty"`
	Barcode      string        `json:"barcode,omitempty"`
	DOI          string        `json:"doi,omitempty"`
	CatalogLinks []CatalogLink `json:"catalogLinks,omitempty"`
}

// CatalogLink points at a record in an external catalog.
type CatalogLink struct {
	Catalog         string `json:"catalog"`
	CatalogRecordID string `json:"catalogRecordId"`
	Refresh         bool   `json:"refresh,omitempty"`
}

// Structural holds membership references.
type Structural struct {
	IsMemberOf []string  `json:"isMemberOf,omitempty"`
	Contains   []FileSet `json:"contains,omitempty"`
}

// FileSet groups the files of one resource.
type FileSet struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Files []File `json:"files,omitempty"`
}

// File is a single content file.
type File struct {
	Filename string `json:"filename"`
	HasMime  string `json:"hasMimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Shelve   bool   `json:"shelve,omitempty"`
}

// Access holds rights and embargo information.
type Access struct {
	View                        string   `json:"view,omitempty"`
	Download                    string   `json:"download,omitempty"`
	Location                    string   `json:"location,omitempty"`
	License                     string   `json:"license,omitempty"`
	UseAndReproductionStatement string   `json:"useAndReproductionStatement,omitempty"`
	Copyright                   string   `json:"copyright,omitempty"`
	Embargo                     *Embargo `json:"embargo,omitempty"`
}

// Embargo restricts access until ReleaseDate.
type Embargo struct {
	ReleaseDate time.Time `json:"releaseDate"`
	View        string    `json:"view,omitempty"`
	Download    string    `json:"download,omitempty"`
}
