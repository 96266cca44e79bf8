// Package errors provides structured error handling for dorindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Repository lookup errors (record, tags, release directives)
//   - 3XX: Collaborator transport errors
//   - 4XX: Record validation errors
//   - 5XX: Document assembly errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryLookup indicates a related object could not be found.
	CategoryLookup Category = "LOOKUP"
	// CategoryTransport indicates a collaborator could not be reached.
	CategoryTransport Category = "TRANSPORT"
	// CategoryValidation indicates malformed input records.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected assembly errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal aborts assembly of the current record.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded output, assembly continues.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Lookup errors (200-299)
	ErrCodeRecordNotFound = "ERR_201_RECORD_NOT_FOUND"
	ErrCodeTagsNotFound   = "ERR_202_TAGS_NOT_FOUND"
	ErrCodeStoreLocked    = "ERR_203_STORE_LOCKED"

	// Transport errors (300-399)
	ErrCodeTimeout         = "ERR_301_TIMEOUT"
	ErrCodeRetrievalFailed = "ERR_302_RETRIEVAL_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidRecord = "ERR_401_INVALID_RECORD"
	ErrCodeInvalidInput  = "ERR_402_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeIndexFailed     = "ERR_505_INDEX_FAILED"
	ErrCodeTransformFailed = "ERR_506_TRANSFORM_FAILED"
	ErrCodeWorkflowFailed  = "ERR_507_WORKFLOW_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "201" from "ERR_201_RECORD_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryLookup
	case '3':
		return CategoryTransport
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryLookup, CategoryTransport:
		return SeverityWarning
	case CategoryValidation, CategoryInternal:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeRetrievalFailed:
		return true
	default:
		return false
	}
}
