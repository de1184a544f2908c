package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

// AccountHandler serves the account directory.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Create handles POST /api/accounts.
//
// @Summary      Create an account
// @Description  Registers a tenant and returns its generated secret token.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  Response{data=domain.Account}
// @Failure      400   {object}  Response
// @Failure      409   {object}  Response
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.service.Create(c.Request().Context(), ports.CreateAccountInput{
		Email:   req.Email,
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ok("Account created successfully", account))
}

// List handles GET /api/accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  Response{data=[]domain.Account}
// @Router       /api/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return c.JSON(http.StatusOK, ok("Accounts retrieved successfully", accounts))
}

// Get handles GET /api/accounts/:accountId.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        accountId  path      string  true  "Account ID"
// @Success      200        {object}  Response{data=domain.Account}
// @Failure      404        {object}  Response
// @Router       /api/accounts/{accountId} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Account retrieved successfully", account))
}

// Update handles PUT /api/accounts/:accountId.
//
// @Summary      Update an account
// @Description  Changes email, name or website. The secret token never changes.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        accountId  path      string                true  "Account ID"
// @Param        body       body      updateAccountRequest  true  "Fields to change"
// @Success      200        {object}  Response{data=domain.Account}
// @Failure      400        {object}  Response
// @Failure      404        {object}  Response
// @Failure      409        {object}  Response
// @Router       /api/accounts/{accountId} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.service.Update(c.Request().Context(), c.Param("accountId"), domain.AccountUpdate{
		Email:   req.Email,
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Account updated successfully", account))
}

// Delete handles DELETE /api/accounts/:accountId.
//
// @Summary      Delete an account
// @Description  Removes the account and all of its destinations.
// @Tags         accounts
// @Produce      json
// @Param        accountId  path      string  true  "Account ID"
// @Success      200        {object}  Response
// @Failure      404        {object}  Response
// @Router       /api/accounts/{accountId} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("accountId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Account deleted successfully", nil))
}
