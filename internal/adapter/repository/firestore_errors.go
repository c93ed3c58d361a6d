package repository

import (
	stderrors "errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Elmalamb/vdm/pkg/errors"
)

// storeError classifies a Firestore failure. Transport failures become
// Unavailable so callers can show a transient notice; everything else is
// internal.
func storeError(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return errors.Unavailable(message, err)
	case codes.PermissionDenied:
		return errors.Forbidden(message, err)
	default:
		return errors.Internal(message, err)
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func timeValue(v interface{}) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}
