// Package repository defines the collaborators the document builder reads
// related data through, and an in-memory implementation of them.
package repository

import (
	"context"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// RecordFinder returns the canonical record for an identifier. Missing
// records fail with errors.ErrCodeRecordNotFound; transport failures with
// errors.ErrCodeRetrievalFailed.
type RecordFinder interface {
	Find(ctx context.Context, id string) (*model.Record, error)
}

// TagFinder returns the administrative tags of an object.
type TagFinder interface {
	AdministrativeTags(ctx context.Context, id string) ([]string, error)
}

// ReleaseFinder returns the raw release directives of an object.
type ReleaseFinder interface {
	ReleaseTags(ctx context.Context, id string) ([]model.ReleaseTag, error)
}

// WorkflowClient returns the workflow state of one object version.
type WorkflowClient interface {
	WorkflowStatus(ctx context.Context, id string, version int) (*model.WorkflowState, error)
}

// Repository bundles every collaborator.
type Repository interface {
	RecordFinder
	TagFinder
	ReleaseFinder
	WorkflowClient
}

// Lister enumerates the identifiers held by a repository.
type Lister interface {
	IDs(ctx context.Context) ([]string, error)
}
