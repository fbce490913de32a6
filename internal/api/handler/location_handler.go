package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/pkg/metrics"
)

// HeaderIdempotencyKey lets a client retry a create without duplicating it.
const HeaderIdempotencyKey = "Idempotency-Key"

// LocationHandler handles HTTP requests for location operations.
type LocationHandler struct {
	service ports.LocationService
}

func NewLocationHandler(service ports.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// List handles GET /locations.
//
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Success      200  {array}   locationResponse
// @Failure      500  {object}  errorResponse
// @Router       /locations [get]
func (h *LocationHandler) List(c echo.Context) error {
	locs, err := h.service.List(c.Request().Context())
	observe("list", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLocationResponses(locs))
}

// Get handles GET /locations/:id.
//
// @Summary      Get a location
// @Tags         locations
// @Produce      json
// @Param        id   path      int  true  "Location id"
// @Success      200  {object}  locationResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /locations/{id} [get]
func (h *LocationHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		// the route only matches integer ids
		observe("get", domain.ErrLocationNotFound)
		return domain.ErrLocationNotFound
	}

	loc, err := h.service.Get(c.Request().Context(), id)
	observe("get", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLocationResponse(loc))
}

// Create handles POST /locations.
//
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      locationRequest  true   "Location fields"
// @Success      201              {object}  locationResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /locations [post]
func (h *LocationHandler) Create(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	req, err := bindLocation(c)
	if err != nil {
		observe("create", domain.ErrInvalidInput)
		return err
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateLocationInput{
		Payload:        toLocationInput(req),
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
		Actor:          caller,
	})
	observe("create", err)
	if err != nil {
		return err
	}
	if result.Replayed {
		metrics.IdempotentReplaysTotal.Inc()
	}

	c.Response().Header().Set(echo.HeaderLocation, "/locations/"+strconv.FormatInt(result.Location.ID, 10))
	return c.JSON(http.StatusCreated, toLocationResponse(result.Location))
}

// Update handles PUT /locations/:id.
//
// @Summary      Replace a location
// @Tags         locations
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int              true  "Location id"
// @Param        body  body  locationRequest  true  "Location fields, id must match the path"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /locations/{id} [put]
func (h *LocationHandler) Update(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c)
	if !ok {
		observe("update", domain.ErrInvalidID)
		return domain.ErrInvalidID
	}
	req, err := bindLocation(c)
	if err != nil {
		observe("update", domain.ErrInvalidInput)
		return err
	}

	err = h.service.Update(c.Request().Context(), ports.UpdateLocationInput{
		PathID:  id,
		Payload: toLocationInput(req),
		Actor:   caller,
	})
	observe("update", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /locations/:id.
//
// @Summary      Delete a location
// @Tags         locations
// @Security     BearerAuth
// @Param        id   path  int  true  "Location id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /locations/{id} [delete]
func (h *LocationHandler) Delete(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c)
	if !ok {
		observe("delete", domain.ErrInvalidID)
		return domain.ErrInvalidID
	}

	err = h.service.Delete(c.Request().Context(), ports.DeleteLocationInput{PathID: id, Actor: caller})
	observe("delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// bindLocation decodes the request body. A request without a body yields a
// nil request so the service can report the missing payload.
func bindLocation(c echo.Context) (*locationRequest, error) {
	if c.Request().ContentLength == 0 {
		return nil, nil
	}
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return &req, nil
}

func observe(operation string, err error) {
	metrics.OperationsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrLocationNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	case domain.IsClientError(err):
		return metrics.OutcomeClientError
	default:
		return metrics.OutcomeError
	}
}
