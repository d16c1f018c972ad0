package handlers

import (
	"errors"
	"logistics-route-service/internal/api/dto"
	"logistics-route-service/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeInvalidRequest     = "invalid_request"
	CodeNotFound           = "not_found"
	CodeNoOrdersFound      = "no_orders_found"
	CodeRouteNotFound      = "route_not_found"
	CodeStopNotFound       = "stop_not_found"
	CodeRouteAlreadyExists = "route_already_exists"
	CodeInternal           = "internal_error"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{domain.ErrNoOrdersFound, http.StatusNotFound, CodeNoOrdersFound},
	{domain.ErrUpstreamUnavailable, http.StatusNotFound, CodeNotFound},
	{domain.ErrRouteNotFound, http.StatusNotFound, CodeRouteNotFound},
	{domain.ErrStopNotFound, http.StatusNotFound, CodeStopNotFound},
	{domain.ErrRouteAlreadyExists, http.StatusConflict, CodeRouteAlreadyExists},
	{domain.ErrInvalidStopStatus, http.StatusBadRequest, CodeInvalidRequest},
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, http.StatusBadRequest, CodeInvalidRequest, msg)
}

// respondError maps service errors to their HTTP status. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeError(c, m.status, m.code, err.Error())
			return
		}
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	writeError(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}
