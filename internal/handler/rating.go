package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/middleware"
	"github.com/roadshare/carpool-backend/internal/service"
)

// RatingHandler bundles dependencies for the rating endpoints.
type RatingHandler struct {
	Ratings *service.RatingService
}

func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{Ratings: ratings}
}

type rateReq struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

// Pending lists the rating slots still waiting on the caller. An optional
// ?ride_id= query scopes to one ride.
func (h *RatingHandler) Pending(c echo.Context) error {
	var rideID uint64
	if v := c.QueryParam("ride_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
		}
		rideID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slots, err := h.Ratings.PendingFor(ctx, middleware.CallerID(c), rideID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pending": slots})
}

// Rate submits a rating into an open slot.
func (h *RatingHandler) Rate(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Ratings.Rate(ctx, middleware.CallerID(c), slotID, req.Rating, req.Comments); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rating submitted"})
}

// Dismiss removes a still-unrated slot from the caller's pending list.
func (h *RatingHandler) Dismiss(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Ratings.Dismiss(ctx, middleware.CallerID(c), slotID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rating slot removed"})
}

// UserRating returns a user's average rating and the comments left about
// them. Users with no ratings report the neutral default.
func (h *RatingHandler) UserRating(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	avg, err := h.Ratings.AverageFor(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	comments, err := h.Ratings.CommentsFor(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"average": avg, "comments": comments})
}
