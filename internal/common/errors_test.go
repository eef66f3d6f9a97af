package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefinitions(t *testing.T) {
	t.Parallel()

	// Verify all errors are defined and unique
	errs := []error{
		ErrInvalidName,
		ErrParentNotFound,
		ErrNodeExists,
		ErrFileNotFound,
		ErrNotDir,
		ErrNotFound,
		ErrMalformedRecord,
		ErrStoreUnavailable,
	}

	t.Run("all errors are non-nil", func(t *testing.T) {
		t.Parallel()
		for i, err := range errs {
			require.NotNil(t, err, "error at index %d should not be nil", i)
		}
	})

	t.Run("all error messages are unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for _, err := range errs {
			msg := err.Error()
			assert.False(t, seen[msg], "duplicate error message: %s", msg)
			seen[msg] = true
		}
	})
}

func TestFSError(t *testing.T) {
	t.Parallel()

	t.Run("message includes op and path", func(t *testing.T) {
		t.Parallel()
		err := NewFSError("create", "/docs", ErrParentNotFound)
		assert.Equal(t, "create /docs: parent not found", err.Error())
	})

	t.Run("root path is quoted", func(t *testing.T) {
		t.Parallel()
		err := NewFSError("list", RootPath, ErrNotDir)
		assert.Equal(t, `list "": not a directory`, err.Error())
	})

	t.Run("unwraps to sentinel", func(t *testing.T) {
		t.Parallel()
		var err error = NewFSError("info", "/x", ErrFileNotFound)
		wrapped := fmt.Errorf("command failed: %w", err)

		assert.ErrorIs(t, wrapped, ErrFileNotFound)

		var fsErr *FSError
		require.True(t, errors.As(wrapped, &fsErr))
		assert.Equal(t, "info", fsErr.Op)
		assert.Equal(t, "/x", fsErr.Path)
	})
}

func TestIsFilesystemError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid name", ErrInvalidName, true},
		{"parent not found", NewFSError("create", "/a", ErrParentNotFound), true},
		{"exists", fmt.Errorf("wrap: %w", ErrNodeExists), true},
		{"file not found", ErrFileNotFound, true},
		{"not dir", ErrNotDir, true},
		{"store unavailable", ErrStoreUnavailable, false},
		{"malformed", ErrMalformedRecord, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFilesystemError(tt.err))
		})
	}
}
