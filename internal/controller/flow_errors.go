package controller

import (
	"errors"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps flow and backend errors onto the response envelope.
// fallback is the in-flow message shown for transport failures.
func respondError(c *gin.Context, err error, fallback string) {
	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, util.ErrBusy),
		errors.Is(err, util.ErrViewClosed),
		errors.Is(err, util.ErrWrongStep),
		errors.Is(err, util.ErrInvalidTransition),
		errors.Is(err, util.ErrNoRecommendation):
		util.Conflict(c, err.Error())
	case errors.Is(err, util.ErrNotAuthenticated):
		util.Unauthorized(c)
	case errors.Is(err, util.ErrMissingField),
		errors.Is(err, util.ErrUnknownOption),
		errors.Is(err, util.ErrSelectionRequired),
		errors.Is(err, util.ErrTeamNameRequired),
		errors.Is(err, util.ErrInvalidTeamCode),
		errors.Is(err, util.ErrEmptyMessage),
		errors.Is(err, util.ErrInvalidRole),
		errors.Is(err, util.ErrInvalidHackathon):
		util.BadRequest(c, err.Error())
	case errors.As(err, &statusErr):
		// 业务失败：展示后端返回的提示
		util.Error(c, http.StatusUnprocessableEntity, backend.Message(err, fallback))
	case backend.IsTransport(err):
		util.BadGateway(c, fallback)
	default:
		util.LogInternalError(c, err)
	}
}

// flowResponse is the payload of every flow action: the new view plus an optional redirect.
type flowResponse struct {
	View     interface{}    `json:"view"`
	Redirect *util.Redirect `json:"redirect,omitempty"`
	Message  string         `json:"message,omitempty"`
}
