package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

// errorKind maps a command error onto transport codes. Unknown errors are
// reported as internal without exposing their text.
func errorKind(err error) (int, codes.Code, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, codes.InvalidArgument, err.Error()
	case errors.Is(err, domain.ErrLineIndex):
		return http.StatusBadRequest, codes.OutOfRange, err.Error()
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, codes.NotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, codes.AlreadyExists, "duplicate request"
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, codes.FailedPrecondition, err.Error()
	case errors.Is(err, domain.ErrEmptySale):
		return http.StatusUnprocessableEntity, codes.FailedPrecondition, err.Error()
	}
	return http.StatusInternalServerError, codes.Internal, "internal error"
}

func mapError(err error) error {
	_, code, msg := errorKind(err)
	return status.Error(code, msg)
}
