// Package client wraps the backend's REST endpoints in typed calls. Every
// call goes through the gateway, so authentication and error normalization
// are handled there.
package client

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evently-dev/evently/internal/cli/gateway"
)

// Requester is the subset of the gateway the client needs
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any) error
	Upload(ctx context.Context, method, path string, fields map[string]string, files []gateway.File, out any) error
}

// Client represents the typed API of the event-booking backend
type Client struct {
	gw       Requester
	validate *validator.Validate
}

// New creates a new API client on top of gw
func New(gw Requester) *Client {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		a, ok := fl.Field().Interface().(Amount)
		return ok && a > 0
	})

	return &Client{gw: gw, validate: validate}
}

// Upload is a file sent as multipart form data
type Upload struct {
	Name    string
	Content io.Reader
}

// check validates req before anything is sent. Failures wrap
// gateway.ErrValidation so callers treat them like a backend 400.
func (c *Client) check(req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", gateway.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", gateway.ErrValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "amount":
		return field + " must be greater than zero"
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func resourcePath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
