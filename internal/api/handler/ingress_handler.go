package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

const DefaultTokenHeader = "CL-X-TOKEN"

// IngressHandler receives tenant payloads and hands them to the dispatcher.
type IngressHandler struct {
	service      ports.DispatchService
	tokenHeader  string
	exposeErrors bool
}

func NewIngressHandler(service ports.DispatchService, tokenHeader string, exposeErrors bool) *IngressHandler {
	if tokenHeader == "" {
		tokenHeader = DefaultTokenHeader
	}
	return &IngressHandler{service: service, tokenHeader: tokenHeader, exposeErrors: exposeErrors}
}

// Receive handles POST /server/incoming_data.
//
// @Summary      Push data to every destination of the calling account
// @Tags         ingress
// @Accept       json
// @Produce      json
// @Param        CL-X-TOKEN  header    string  true  "Account secret token"
// @Param        body        body      object  true  "Arbitrary JSON object"
// @Success      200         {object}  Response{data=dispatchResponse}
// @Failure      400         {object}  Response
// @Failure      401         {object}  Response
// @Failure      500         {object}  Response{data=dispatchResponse}
// @Router       /server/incoming_data [post]
func (h *IngressHandler) Receive(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	outcome, err := h.service.Dispatch(req.Context(), ports.DispatchInput{
		Token:       req.Header.Get(h.tokenHeader),
		ContentType: req.Header.Get(echo.HeaderContentType),
		Body:        body,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPartialFailure) && outcome != nil {
			resp := Response{
				Success: false,
				Message: outcome.Message,
				Data:    newDispatchResponse(outcome, h.exposeErrors),
			}
			if h.exposeErrors {
				resp.Error = err.Error()
			}
			return c.JSON(http.StatusInternalServerError, resp)
		}
		return err
	}

	return c.JSON(http.StatusOK, ok(outcome.Message, newDispatchResponse(outcome, h.exposeErrors)))
}
