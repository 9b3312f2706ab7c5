package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errUserNotSynced = echo.NewHTTPError(http.StatusForbidden, "user has not selected a role yet")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

	// file redirect route
	errFileNotFound    = echo.Map{"error": "File not found"}
	errFileFetchFailed = echo.Map{"error": "Failed to fetch file"}
)

// notFoundErrors are the domain errors answered with a 404.
var notFoundErrors = []error{
	user.ErrNotFound,
	note.ErrNotFound,
	assignment.ErrNotFound,
	file.ErrNotFound,
}

// forbiddenErrors are the domain errors answered with a 403.
var forbiddenErrors = []error{
	note.ErrNotOwner,
	assignment.ErrNotOwner,
}

func isOneOf(err error, errs []error) bool {
	for _, e := range errs {
		if err == e {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case isOneOf(cause, notFoundErrors):
				code = http.StatusNotFound
				message = cause.Error()
			case isOneOf(cause, forbiddenErrors):
				code = http.StatusForbidden
				message = cause.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				usr, ok := ctx.Get(contextUserKey).(user.User)
				if !ok {
					if claims, cErr := getContextClaims(ctx); cErr == nil {
						usr.IdentityID = claims.Subject
						usr.Name = claims.Name
						usr.Email = claims.Email
					}
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
