package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the shape of every outward-facing response: a success flag, a
// human-readable message, and the payload. Errors carry no payload.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope with the given payload.
func Success(c *gin.Context, data interface{}, message string) {
	if message == "" {
		message = "Success"
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 envelope with the given payload.
func Created(c *gin.Context, data interface{}, message string) {
	if message == "" {
		message = "Created"
	}
	c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes an error envelope with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal Server Error")
}
