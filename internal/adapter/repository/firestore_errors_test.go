package repository

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Elmalamb/vdm/pkg/errors"
)

func TestStoreError(t *testing.T) {
	assert.NoError(t, storeError("x", nil))

	cases := []struct {
		err  error
		code string
	}{
		{status.Error(codes.Unavailable, "connection refused"), errors.CodeUnavailable},
		{status.Error(codes.DeadlineExceeded, "timeout"), errors.CodeUnavailable},
		{status.Error(codes.Aborted, "contention"), errors.CodeUnavailable},
		{status.Error(codes.PermissionDenied, "rules"), errors.CodeForbidden},
		{status.Error(codes.InvalidArgument, "bad path"), errors.CodeInternal},
		{stderrors.New("boom"), errors.CodeInternal},
	}
	for _, tc := range cases {
		assert.True(t, errors.Is(storeError("Failed", tc.err), tc.code), tc.err.Error())
	}

	forbidden := errors.Forbidden("assigned to another moderator", nil)
	assert.Same(t, forbidden, storeError("Failed to send message", forbidden))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, isNotFound(status.Error(codes.Unavailable, "down")))
	assert.False(t, isNotFound(nil))
}

func TestTimeValue(t *testing.T) {
	now := time.Now()
	got, ok := timeValue(now)
	assert.True(t, ok)
	assert.Equal(t, now, got)

	_, ok = timeValue(time.Time{})
	assert.False(t, ok)
	_, ok = timeValue("2024-01-01")
	assert.False(t, ok)
}
