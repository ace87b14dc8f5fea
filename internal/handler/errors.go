package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/auth"
	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/internal/service"
	"github.com/roadshare/carpool-backend/internal/utils"
)

// respondError maps domain sentinels onto HTTP statuses. Anything unmapped
// is a 500 with a generic message so internals never leak.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRideNotFound),
		errors.Is(err, repository.ErrRequestNotFound),
		errors.Is(err, repository.ErrRatingNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCodeNotFound),
		errors.Is(err, model.ErrRequestMismatch):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})

	case errors.Is(err, model.ErrNotRideOwner),
		errors.Is(err, model.ErrNotRater):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})

	case errors.Is(err, auth.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})

	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrTooEarlyToStart),
		errors.Is(err, model.ErrRideNotWaiting),
		errors.Is(err, model.ErrDepartureElapsed),
		errors.Is(err, model.ErrNoAvailableSeats),
		errors.Is(err, model.ErrDuplicateRequest),
		errors.Is(err, model.ErrRequestNotPending),
		errors.Is(err, model.ErrAlreadyRated),
		errors.Is(err, model.ErrScheduleOverlap),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrTxConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})

	case errors.Is(err, model.ErrSelfJoin),
		errors.Is(err, model.ErrInvalidSeatCount),
		errors.Is(err, model.ErrInvalidRating),
		errors.Is(err, model.ErrDeparturePassed),
		errors.Is(err, model.ErrNoSeatsOffered),
		errors.Is(err, model.ErrInvalidRadius),
		errors.Is(err, model.ErrCodeExpired),
		errors.Is(err, model.ErrCodeMismatch),
		errors.Is(err, geo.ErrBadLocation),
		errors.Is(err, utils.ErrInvalidEmail),
		errors.Is(err, utils.ErrWeakPassword),
		errors.Is(err, utils.ErrInvalidPhone),
		errors.Is(err, utils.ErrInvalidBirthday),
		errors.Is(err, utils.ErrAgeOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})

	case errors.Is(err, geo.ErrProviderUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
