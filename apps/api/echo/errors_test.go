package echoapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/tests"
)

func Test_appHTTPErrorHandler_shutdown(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantShutdown bool
	}{
		{
			name:         "fatal storage error",
			err:          errors.Wrap(core.NewShutdownError("selecting notes: database disk image is malformed"), "querying notes"),
			wantCode:     http.StatusInternalServerError,
			wantShutdown: true,
		},
		{
			name:     "server error",
			err:      errors.New("storage is down"),
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "not found",
			err:      errors.Wrap(note.ErrNotFound, "finding note"),
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shutdown bool
			handler := newAppHTTPErrorHandler(testutil.NewLogger(t), core.NewTranslator(), func() { shutdown = true })

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			rec := httptest.NewRecorder()
			handler(tt.err, echo.New().NewContext(req, rec))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantShutdown, shutdown)
		})
	}
}

func TestServer_signalShutdown(t *testing.T) {
	s := &Server{shutdown: make(chan os.Signal, 1)}
	s.signalShutdown()
	s.signalShutdown() // already shutting down, must not block

	select {
	case sig := <-s.shutdown:
		assert.Equal(t, syscall.SIGTERM, sig)
	default:
		t.Fatal("no shutdown signal sent")
	}
}
