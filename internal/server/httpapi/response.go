package httpapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// OK sends an HTTP 200 OK response with a custom body.
func OK(c *fiber.Ctx, s any) error {
	return c.Status(http.StatusOK).JSON(s)
}

// Created sends an HTTP 201 Created response with a custom body.
func Created(c *fiber.Ctx, s any) error {
	return c.Status(http.StatusCreated).JSON(s)
}

// NoContent sends an HTTP 204 No Content response without a body.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// BadRequest sends an HTTP 400 Bad Request response with a message.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorBody{Error: message})
}

// Unauthorized sends an HTTP 401 Unauthorized response with a message.
func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(ErrorBody{Error: message})
}

// NotFound sends an HTTP 404 Not Found response with a message.
func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusNotFound).JSON(ErrorBody{Error: message})
}

// Conflict sends an HTTP 409 Conflict response with a message.
func Conflict(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusConflict).JSON(ErrorBody{Error: message})
}

// InternalServerError sends an HTTP 500 Internal Server Error response.
func InternalServerError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusInternalServerError).JSON(ErrorBody{Error: message})
}
