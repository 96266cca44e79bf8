package model

import "time"

// WorkflowState is the processing state of one object version.
type WorkflowState struct {
	// Display is the full status line, e.g. "v4 In accessioning (described, published)".
	Display string `json:"display" yaml:"display"`
	// DisplaySimplified is the facet-friendly status, e.g. "In accessioning".
	DisplaySimplified string      `json:"displaySimplified" yaml:"display_simplified"`
	Milestones        []Milestone `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Workflows         []Workflow  `json:"workflows,omitempty" yaml:"workflows,omitempty"`
}

// Milestone records when a lifecycle step was reached.
type Milestone struct {
	Name    string    `json:"milestone" yaml:"milestone"`
	At      time.Time `json:"at" yaml:"at"`
	Version int       `json:"version,omitempty" yaml:"version,omitempty"`
}

// Workflow is the latest execution of a named workflow.
type Workflow struct {
	Name      string    `json:"name" yaml:"name"`
	Processes []Process `json:"processes,omitempty" yaml:"processes,omitempty"`
}

// Process is one step of a workflow.
type Process struct {
	Name         string `json:"name" yaml:"name"`
	Status       string `json:"status" yaml:"status"`
	ErrorMessage string `json:"errorMessage,omitempty" yaml:"error_message,omitempty"`
	Lifecycle    string `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
}
