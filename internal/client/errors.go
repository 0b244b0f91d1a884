package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBusy            = errors.New("operation already in progress")
	ErrClosed          = errors.New("store is closed")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrOwnProduct      = errors.New("you cannot add your own product to the cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrQuantityLimit   = errors.New("quantity is too large")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// userMessage picks the text shown in a failure notice.
func userMessage(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	switch {
	case errors.Is(err, ErrOwnProduct), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrQuantityLimit),
		errors.Is(err, ErrNotLoggedIn):
		return err.Error()
	}
	return fallback
}
