// Package handler holds the gin handlers of the cookbook API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/infrastructure/logger"
	"github.com/cookbook/api/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// OK sends a 200 response
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// NotFound sends a 404 with an empty body
func (h *BaseHandler) NotFound(c *gin.Context) {
	c.Status(http.StatusNotFound)
}

// ParseID reads the :id path parameter. Anything that is not a positive
// integer cannot name a row, so it is answered with 404.
func (h *BaseHandler) ParseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// HandleError converts application errors to responses.
//
//   - validation errors become a field map with the code's status
//   - not found becomes an empty 404
//   - other domain errors become a detail list
//   - anything else is logged and answered with a generic 500
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(dto.StatusForCode(validationErr.Code), dto.FieldErrors(validationErr.Fields))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.StatusForCode(domainErr.Code)
		switch status {
		case http.StatusNotFound:
			h.NotFound(c)
			return
		case http.StatusConflict:
			c.JSON(status, dto.NewDetail(dto.MsgConflict))
			return
		case http.StatusInternalServerError:
		default:
			c.JSON(status, dto.NewDetail(domainErr.Message))
			return
		}
	}

	logger.Request(c).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewDetail(dto.MsgServerError))
}
