package handlers

import (
	"errors"
	"net/http"

	"bizdesk/internal/domain/entities"
	"bizdesk/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errNotAuthenticated = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	errInvalidValue     = pkg.NewDomainErrorSimple("INVALID_VALUE", "Value must be a non-negative decimal amount", http.StatusBadRequest)
)

// mapCommonError covers the store-level error kinds every resource shares.
// Resource-specific sentinels must be checked before falling back to it.
func mapCommonError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, entities.ErrNotAuthenticated):
		return errNotAuthenticated
	case errors.Is(err, entities.ErrInvalidValue):
		return errInvalidValue
	case errors.Is(err, entities.ErrUnknownStatus):
		return pkg.NewDomainError("UNKNOWN_STATUS", "Unknown status", err, http.StatusUnprocessableEntity)
	case errors.Is(err, entities.ErrInvalidTransition):
		return pkg.NewDomainError("INVALID_TRANSITION", "Status change not allowed", err, http.StatusUnprocessableEntity)
	case errors.Is(err, entities.ErrReferentialConflict):
		return pkg.NewDomainError("CONFLICT", "The change conflicts with related records", err, http.StatusConflict)
	case errors.Is(err, entities.ErrNotFound):
		return pkg.NewDomainError("NOT_FOUND", "Resource not found", err, http.StatusNotFound)
	case errors.Is(err, entities.ErrStoreUnavailable):
		return pkg.NewDomainError("STORE_UNAVAILABLE", "Storage is temporarily unavailable", err, http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func abortWithError(c *gin.Context, appErr *pkg.AppError) {
	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
