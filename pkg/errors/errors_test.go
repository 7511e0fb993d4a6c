package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "source_missing",
			code:    errors.ErrSourceMissing,
			message: "zsh/zshrc not found",
			wantStr: "[SOURCE_MISSING] zsh/zshrc not found",
		},
		{
			name:    "no_package_manager",
			code:    errors.ErrNoPackageManager,
			message: "no supported package manager",
			wantStr: "[NO_PACKAGE_MANAGER] no supported package manager",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("connection refused")

	err := errors.Wrapf(base, errors.ErrRemoteExec, "sync on %s", "oracle")
	require.NotNil(t, err)

	assert.Equal(t, "[REMOTE_EXEC] sync on oracle: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "nothing %d", 1))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New(errors.ErrBackupCopy, "copy failed"))

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrBackupCopy, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrBackupCreate, "")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupCopy))
	assert.Equal(t, errors.ErrBackupCopy, errors.GetErrorCode(err))
}

func TestGetErrorCodeForPlainError(t *testing.T) {
	err := stderrors.New("plain")

	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(err))
	assert.Nil(t, errors.GetErrorDetails(err))
	assert.False(t, errors.IsErrorCode(err, errors.ErrUnknown))
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrToolInstall, "install failed").
		WithDetail("tool", "ripgrep").
		WithDetails(map[string]interface{}{"manager": "brew", "exit": 1})

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "ripgrep", details["tool"])
	assert.Equal(t, "brew", details["manager"])
	assert.Equal(t, 1, details["exit"])

	var empty errors.DotsyncError
	empty.WithDetail("k", "v")
	assert.Equal(t, "v", empty.Details["k"])
}
