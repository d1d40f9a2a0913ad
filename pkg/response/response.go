package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staynest/service-booking/pkg/domain"
)

// ErrorBody is the error envelope returned to clients.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a 200 with the data envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 with the data envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 with items and pagination metadata.
func Paginated[T any](c *gin.Context, items []T, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    domain.NewPaginatedResult(items, total, page, limit),
	})
}

// BadRequest writes a 400 validation envelope.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   ErrorBody{Code: domain.CodeValidation, Message: message},
	})
}

// Unauthorized writes a 401 for requests without a usable identity.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   ErrorBody{Code: "UNAUTHENTICATED", Message: "authentication required"},
	})
}

// Error maps err to a status code. Domain errors keep their message; anything else is a 500
// with a generic message so storage details never reach the client.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
		})
		return
	}

	c.JSON(StatusFor(de.Kind), gin.H{
		"success": false,
		"error":   ErrorBody{Code: de.Code, Message: de.Message},
	})
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
