package http

import (
	"errors"
	"net/http"

	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	errs.CodeValidation:        http.StatusBadRequest,
	errs.CodeNotAuthorized:     http.StatusForbidden,
	errs.CodeNotFound:          http.StatusNotFound,
	errs.CodeInvalidTransition: http.StatusConflict,
	errs.CodeAlreadyAssigned:   http.StatusConflict,
	errs.CodeInternal:          http.StatusInternalServerError,
}

// fail writes err as an Error body. Binding errors raised by echo keep their status;
// internal errors are logged and their text is not exposed.
func (s *Server) fail(c echo.Context, err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return c.JSON(http.StatusBadRequest, Error{Code: errs.CodeValidation, Message: bindErr.Error()})
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Error{Code: errs.CodeValidation, Message: "invalid request"})
	}

	code := errs.Code(err)
	status := statusByCode[code]
	if code == errs.CodeInternal {
		s.logger.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(status, Error{Code: code, Message: http.StatusText(status)})
	}

	return c.JSON(status, Error{Code: code, Message: err.Error()})
}
