package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmanError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := stderrors.New("connection refused")

	// When: wrapping it as a retrieval failure
	err := RetrievalFailed("druid:bc123df4567", originalErr)

	// Then: the cause is reachable through the chain
	require.NotNil(t, err)
	assert.Equal(t, originalErr, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, originalErr))
}

func TestAmanError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *AmanError
		expected string
	}{
		{
			name:     "not found",
			err:      NotFound("druid:xh235dd9059"),
			expected: "[ERR_201_RECORD_NOT_FOUND] record druid:xh235dd9059 not found",
		},
		{
			name:     "invalid record",
			err:      ValidationError("record has no external identifier", nil),
			expected: "[ERR_401_INVALID_RECORD] record has no external identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAmanError_Is_MatchesByCode(t *testing.T) {
	// Given: two not-found errors for different records
	err1 := NotFound("druid:aa111aa1111")
	err2 := NotFound("druid:bb222bb2222")

	// Then: they match by code
	assert.True(t, stderrors.Is(err1, err2))
	assert.False(t, stderrors.Is(err1, RetrievalFailed("druid:aa111aa1111", nil)))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeRecordNotFound, CategoryLookup, SeverityWarning, false},
		{ErrCodeRetrievalFailed, CategoryTransport, SeverityWarning, true},
		{ErrCodeInvalidRecord, CategoryValidation, SeverityFatal, false},
		{ErrCodeIndexFailed, CategoryInternal, SeverityFatal, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestIsLookupFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", NotFound("druid:x"), true},
		{"retrieval failed", RetrievalFailed("druid:x", nil), true},
		{"wrapped not found", fmt.Errorf("finding parent: %w", NotFound("druid:x")), true},
		{"validation", ValidationError("bad", nil), false},
		{"plain error", stderrors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLookupFailure(tt.err))
		})
	}
}

func TestGetCode_FollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeIndexFailed, "inner", nil))

	assert.Equal(t, ErrCodeIndexFailed, GetCode(err))
	assert.True(t, IsFatal(err))
	assert.Empty(t, GetCode(stderrors.New("plain")))
}

func TestFormatForCLI_IncludesRecordAndCode(t *testing.T) {
	// Given: a not-found error with a suggestion
	err := NotFound("druid:bc123df4567").WithSuggestion("check the repository path")

	// When: formatting for the terminal
	out := FormatForCLI(err)

	// Then: message, record, hint and code are present
	assert.Contains(t, out, "Error: record druid:bc123df4567 not found")
	assert.Contains(t, out, "Record: druid:bc123df4567")
	assert.Contains(t, out, "Hint: check the repository path")
	assert.Contains(t, out, "Code: ERR_201_RECORD_NOT_FOUND")
}

func TestFormatJSON_WrapsForeignErrors(t *testing.T) {
	data, err := FormatJSON(stderrors.New("boom"))

	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"ERR_501_INTERNAL","message":"boom","category":"INTERNAL","retryable":false}`, string(data))
}

func TestLogAttrs_IncludesDetails(t *testing.T) {
	attrs := LogAttrs(NotFound("druid:x"))

	assert.Len(t, attrs, 5)
	assert.Nil(t, LogAttrs(nil))
}

// =============================================================================
// Retry
// =============================================================================

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestRetry_SucceedsAfterRetryableError(t *testing.T) {
	// Given: a call that fails once with a retryable error
	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", RetrievalFailed("druid:x", nil)
		}
		return "ok", nil
	}

	// When: retrying
	got, err := Retry(context.Background(), fastRetry(), fn)

	// Then: the second attempt wins
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(), func(context.Context) (int, error) {
		calls++
		return 0, NotFound("druid:x")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ErrCodeRecordNotFound, GetCode(err))
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(), func(context.Context) (int, error) {
		calls++
		return 0, RetrievalFailed("druid:x", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 2 retries")
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastRetry(), func(context.Context) (int, error) {
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
