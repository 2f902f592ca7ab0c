package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillforge/internal/engine"
	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
)

// Error codes carried in the error envelope.
const (
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeInvalidState  = "invalid_state"
	CodeDataIntegrity = "data_integrity"
	CodeNotReady      = "not_ready"
	CodeInternal      = "internal"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps an engine error to an HTTP status and error code.
func classify(err error) (int, string) {
	var (
		ierr *skillgraph.IntegrityError
		serr *mastery.InvalidStateError
		verr *engine.ValidationError
	)
	switch {
	case errors.As(err, &ierr):
		return http.StatusUnprocessableEntity, CodeDataIntegrity
	case errors.As(err, &serr):
		return http.StatusConflict, CodeInvalidState
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, engine.ErrNotReady):
		return http.StatusServiceUnavailable, CodeNotReady
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
