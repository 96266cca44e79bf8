package model

import "time"

// Release directive scopes.
const (
	ScopeSelf       = "self"
	ScopeCollection = "collection"
)

// ReleaseTag is a timestamped directive to expose (or withhold) an object
// from a named destination. Directives are historical; only the most
// recent per destination and scope is effective.
type ReleaseTag struct {
	Who     string     `json:"who,omitempty" yaml:"who,omitempty"`
	What    string     `json:"what" yaml:"what"`
	Date    *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	To      string     `json:"to" yaml:"to"`
	Release bool       `json:"release" yaml:"release"`
}
