package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/remote"
	"github.com/labstack/echo/v4"
)

// httpError maps a failed query or mutation to a response status. Only
// validation failures expose their cause to the client.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var re *remote.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case remote.KindAuth:
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication failed").SetInternal(err)
		case remote.KindNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Not found").SetInternal(err)
		case remote.KindValidation:
			msg := "Invalid request"
			if re.Err != nil {
				msg = re.Err.Error()
			}
			return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
		case remote.KindUpload:
			return echo.NewHTTPError(http.StatusBadGateway, "File upload failed").SetInternal(err)
		case remote.KindDocumentWrite:
			return echo.NewHTTPError(http.StatusBadGateway, "Saving failed").SetInternal(err)
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "Backend request failed").SetInternal(err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Request cancelled").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
