package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/middleware"
	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/service"
)

// DriverHandler bundles dependencies for the driver-side endpoints.
type DriverHandler struct {
	Rides    *service.RideService
	Requests *service.RequestService
}

func NewDriverHandler(rides *service.RideService, requests *service.RequestService) *DriverHandler {
	return &DriverHandler{Rides: rides, Requests: requests}
}

// ----- DTOs -----

type rideReq struct {
	DepartureLocation string    `json:"departure_location"` // "lat,lng"
	PickupRadius      float64   `json:"pickup_radius"`
	Destination       string    `json:"destination"` // "lat,lng"
	DropRadius        float64   `json:"drop_radius"`
	DepartureAt       time.Time `json:"departure_at"`
	AvailableSeats    int       `json:"available_seats"`
	Notes             string    `json:"notes"`
}

type ridePart struct {
	ID                  uint64    `json:"id"`
	DriverID            uint64    `json:"driver_id"`
	Status              string    `json:"status"`
	DepartureLocation   string    `json:"departure_location"`
	PickupRadius        float64   `json:"pickup_radius"`
	Destination         string    `json:"destination"`
	DropRadius          float64   `json:"drop_radius"`
	DepartureAt         time.Time `json:"departure_at"`
	AvailableSeats      int       `json:"available_seats"`
	ConfirmedPassengers int       `json:"confirmed_passengers"`
	Notes               string    `json:"notes,omitempty"`
}

func toRidePart(r model.Ride) ridePart {
	return ridePart{
		ID:                  r.ID,
		DriverID:            r.DriverID,
		Status:              r.Status,
		DepartureLocation:   r.DepartureLocation,
		PickupRadius:        r.PickupRadius,
		Destination:         r.Destination,
		DropRadius:          r.DropRadius,
		DepartureAt:         r.DepartureAt,
		AvailableSeats:      r.AvailableSeats,
		ConfirmedPassengers: r.ConfirmedPassengers,
		Notes:               r.Notes,
	}
}

func toRideParts(rides []model.Ride) []ridePart {
	out := make([]ridePart, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRidePart(r))
	}
	return out
}

type requestPart struct {
	ID             uint64    `json:"id"`
	RideID         uint64    `json:"ride_id"`
	PassengerID    uint64    `json:"passenger_id"`
	Status         string    `json:"status"`
	RequestedSeats int       `json:"requested_seats"`
	CreatedAt      time.Time `json:"created_at"`
}

func toRequestParts(reqs []model.JoinRequest) []requestPart {
	out := make([]requestPart, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, requestPart{
			ID:             r.ID,
			RideID:         r.RideID,
			PassengerID:    r.PassengerID,
			Status:         r.Status,
			RequestedSeats: r.RequestedSeats,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// PostRide creates a future ride for the caller.
func (h *DriverHandler) PostRide(c echo.Context) error {
	var req rideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ride, err := h.Rides.PostRide(ctx, middleware.CallerID(c), service.PostRideInput{
		DepartureLocation: req.DepartureLocation,
		PickupRadius:      req.PickupRadius,
		Destination:       req.Destination,
		DropRadius:        req.DropRadius,
		DepartureAt:       req.DepartureAt,
		AvailableSeats:    req.AvailableSeats,
		Notes:             req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ride": toRidePart(ride)})
}

// UpdateRide edits a waiting ride owned by the caller.
func (h *DriverHandler) UpdateRide(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req rideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ride, err := h.Rides.UpdateRide(ctx, middleware.CallerID(c), rideID, service.PostRideInput{
		DepartureLocation: req.DepartureLocation,
		PickupRadius:      req.PickupRadius,
		Destination:       req.Destination,
		DropRadius:        req.DropRadius,
		DepartureAt:       req.DepartureAt,
		AvailableSeats:    req.AvailableSeats,
		Notes:             req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ride": toRidePart(ride)})
}

// MyRides lists the caller's posted rides.
func (h *DriverHandler) MyRides(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rides, err := h.Rides.ListByDriver(ctx, middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rides": toRideParts(rides)})
}

// ListRequests returns the join requests on one of the caller's rides. An
// optional ?status= query narrows by status.
func (h *DriverHandler) ListRequests(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListForRide(ctx, middleware.CallerID(c), rideID, c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestParts(reqs)})
}

// AcceptRequest grants a pending join request its seats.
func (h *DriverHandler) AcceptRequest(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	requestID, err := pathID(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Requests.Accept(ctx, middleware.CallerID(c), rideID, requestID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request accepted"})
}

// RejectRequest declines a pending join request.
func (h *DriverHandler) RejectRequest(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	requestID, err := pathID(c, "request_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Requests.Reject(ctx, middleware.CallerID(c), rideID, requestID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected"})
}

// StartRide moves a waiting ride to in_progress.
func (h *DriverHandler) StartRide(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Rides.StartRide(ctx, middleware.CallerID(c), rideID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ride started"})
}

// EndRide moves an in_progress ride to completed and opens rating slots.
func (h *DriverHandler) EndRide(c echo.Context) error {
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Rides.EndRide(ctx, middleware.CallerID(c), rideID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ride completed"})
}
