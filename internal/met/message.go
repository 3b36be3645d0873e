/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package met

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// UserMessage turns an error from this package into something safe to show a
// player. Raw error text never leaks through.
func UserMessage(err error) string {
	const prefix = "Error loading artwork. "

	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadGateway:
			return prefix + "The museum's server is currently unavailable. Please try again in a few moments."
		case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return prefix + "The museum's service is temporarily unavailable. Please try again later."
		}
		return prefix + "Please try again."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return prefix + "The museum's service took too long to respond. Please try again shortly."
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return prefix + "Unable to connect to the server. Please check your internet connection."
	}

	return prefix + "Please try again."
}
