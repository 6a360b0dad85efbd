package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	err := NewInvalidInputError("bad strategy")
	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Error(), "bad strategy")
}

func TestWrapError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapError(cause, ErrCodeServiceUnavailable, "source unreachable", http.StatusServiceUnavailable)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "source unreachable")
}

func TestWithContext(t *testing.T) {
	err := NewInternalError("boom").WithContext("source", "rtsp://camera.local/stream")
	assert.Equal(t, "rtsp://camera.local/stream", err.Context["source"])
}

func TestGetAppError(t *testing.T) {
	appErr := NewNotFoundError("summary")
	require.True(t, IsAppError(appErr))

	got := GetAppError(appErr)
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeNotFound, got.Code)

	assert.False(t, IsAppError(errors.New("plain")))
	assert.Nil(t, GetAppError(errors.New("plain")))
}
