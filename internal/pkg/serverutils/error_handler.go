package serverutils

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StatusCoder is implemented by domain errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// ErrorHandlerMiddleware turns handler errors into JSON error envelopes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// WriteError is also used as fiber's ErrorHandler so errors raised outside
// the middleware chain get the same shape.
func WriteError(ctx *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse(fields))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	var coded StatusCoder
	if errors.As(err, &coded) {
		code := coded.StatusCode()
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}

	log.Printf("[ERROR] Unhandled error on %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}
