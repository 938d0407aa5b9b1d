package fakeapi

import (
	"github.com/labstack/echo/v4"
)

// GenericResponse mirrors the todo API envelope.
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ResponseSuccess(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, GenericResponse{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func ResponseError(c echo.Context, code int, msg string) error {
	return c.JSON(code, GenericResponse{
		Success: false,
		Message: msg,
	})
}
