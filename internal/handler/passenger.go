package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/middleware"
	"github.com/roadshare/carpool-backend/internal/service"
)

// PassengerHandler bundles dependencies for the passenger-side endpoints.
type PassengerHandler struct {
	Rides    *service.RideService
	Requests *service.RequestService
}

func NewPassengerHandler(rides *service.RideService, requests *service.RequestService) *PassengerHandler {
	return &PassengerHandler{Rides: rides, Requests: requests}
}

// ----- DTOs -----

type searchReq struct {
	Seats          int       `json:"seats"`
	DepartureAt    time.Time `json:"departure_at"`
	DeltaHours     float64   `json:"delta_hours"` // 0 means the default window
	PickupLocation string    `json:"pickup_location"`
	PickupRadius   float64   `json:"pickup_radius"`
	DropLocation   string    `json:"drop_location"`
	DropRadius     float64   `json:"drop_radius"`
}

type joinReq struct {
	Seats int `json:"seats"`
}

// SearchRides finds waiting rides matching seats, departure window and the
// optional pickup/drop circles.
func (h *PassengerHandler) SearchRides(c echo.Context) error {
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	params := service.SearchParams{
		CallerID:       middleware.CallerID(c),
		Seats:          req.Seats,
		DepartureAt:    req.DepartureAt,
		DepartureDelta: time.Duration(req.DeltaHours * float64(time.Hour)),
	}
	if req.PickupRadius > 0 {
		p, err := geo.ParseLocation(req.PickupLocation)
		if err != nil {
			return respondError(c, err)
		}
		params.Pickup, params.PickupRadius = p, req.PickupRadius
	}
	if req.DropRadius > 0 {
		p, err := geo.ParseLocation(req.DropLocation)
		if err != nil {
			return respondError(c, err)
		}
		params.Drop, params.DropRadius = p, req.DropRadius
	}

	// Distance filtering may call out to a route provider, so give the
	// search more room than a plain DB call.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rides, err := h.Rides.SearchRides(ctx, params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rides": toRideParts(rides)})
}

// JoinRide submits a join request for seats on a ride.
func (h *PassengerHandler) JoinRide(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	jr, err := h.Requests.Submit(ctx, middleware.CallerID(c), rideID, req.Seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": requestPart{
		ID:             jr.ID,
		RideID:         jr.RideID,
		PassengerID:    jr.PassengerID,
		Status:         jr.Status,
		RequestedSeats: jr.RequestedSeats,
		CreatedAt:      jr.CreatedAt,
	}})
}

// MyRequests lists all join requests the caller ever filed.
func (h *PassengerHandler) MyRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListMine(ctx, middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestParts(reqs)})
}

// GetRide returns one ride by id.
func (h *PassengerHandler) GetRide(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ride, err := h.Rides.GetRide(ctx, rideID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ride": toRidePart(ride)})
}
