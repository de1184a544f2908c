package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

// DestinationHandler serves the destination directory.
type DestinationHandler struct {
	service ports.DestinationService
}

func NewDestinationHandler(service ports.DestinationService) *DestinationHandler {
	return &DestinationHandler{service: service}
}

// Create handles POST /api/destinations.
//
// @Summary      Create a destination
// @Tags         destinations
// @Accept       json
// @Produce      json
// @Param        body  body      createDestinationRequest  true  "Destination details"
// @Success      201   {object}  Response{data=domain.Destination}
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Router       /api/destinations [post]
func (h *DestinationHandler) Create(c echo.Context) error {
	var req createDestinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dest, err := h.service.Create(c.Request().Context(), ports.CreateDestinationInput{
		AccountID:  req.AccountID,
		URL:        req.URL,
		HTTPMethod: req.HTTPMethod,
		Headers:    req.Headers,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ok("Destination created successfully", dest))
}

// List handles GET /api/destinations.
//
// @Summary      List destinations
// @Tags         destinations
// @Produce      json
// @Success      200  {object}  Response{data=[]domain.Destination}
// @Router       /api/destinations [get]
func (h *DestinationHandler) List(c echo.Context) error {
	dests, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Destinations retrieved successfully", nonNil(dests)))
}

// Get handles GET /api/destinations/:id.
//
// @Summary      Get a destination
// @Tags         destinations
// @Produce      json
// @Param        id   path      string  true  "Destination ID"
// @Success      200  {object}  Response{data=domain.Destination}
// @Failure      404  {object}  Response
// @Router       /api/destinations/{id} [get]
func (h *DestinationHandler) Get(c echo.Context) error {
	dest, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Destination retrieved successfully", dest))
}

// ListByAccount handles GET /api/destinations/account/:accountId.
//
// @Summary      List the destinations of an account
// @Tags         destinations
// @Produce      json
// @Param        accountId  path      string  true  "Account ID"
// @Success      200        {object}  Response{data=[]domain.Destination}
// @Failure      404        {object}  Response
// @Router       /api/destinations/account/{accountId} [get]
func (h *DestinationHandler) ListByAccount(c echo.Context) error {
	dests, err := h.service.ListByAccount(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Destinations retrieved successfully", nonNil(dests)))
}

// Update handles PUT /api/destinations/:id.
//
// @Summary      Update a destination
// @Tags         destinations
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Destination ID"
// @Param        body  body      updateDestinationRequest  true  "Fields to change"
// @Success      200   {object}  Response{data=domain.Destination}
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Router       /api/destinations/{id} [put]
func (h *DestinationHandler) Update(c echo.Context) error {
	var req updateDestinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dest, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateDestinationInput{
		URL:        req.URL,
		HTTPMethod: req.HTTPMethod,
		Headers:    req.Headers,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Destination updated successfully", dest))
}

// Delete handles DELETE /api/destinations/:id.
//
// @Summary      Delete a destination
// @Tags         destinations
// @Produce      json
// @Param        id   path      string  true  "Destination ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  Response
// @Router       /api/destinations/{id} [delete]
func (h *DestinationHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Destination deleted successfully", nil))
}

func nonNil(d []*domain.Destination) []*domain.Destination {
	if d == nil {
		return []*domain.Destination{}
	}
	return d
}
