package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/catalog"
	"github.com/zulandar/qadesk/internal/state"
	"github.com/zulandar/qadesk/internal/store"
)

// apiError is the body of every failed API call.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// abortError maps err to a status and JSON body.
func abortError(c *gin.Context, err error) {
	var ve *state.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, state.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, apiError{Error: "not found"})
	case errors.Is(err, ai.ErrEmptyInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: "请先填写功能描述或验收标准"})
	case errors.Is(err, app.ErrGitHubDisabled):
		c.AbortWithStatusJSON(http.StatusConflict, apiError{Error: err.Error()})
	default:
		var se *store.Error
		if errors.As(err, &se) {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadGateway, apiError{Error: store.Message(err)})
			return
		}
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{Error: err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: err.Error()})
}

// withWarning is a locally applied value plus the backend's complaint.
type withWarning[T any] struct {
	Data    T      `json:"data"`
	Warning string `json:"warning,omitempty"`
}

func respond[T any](c *gin.Context, status int, res state.Result[T]) {
	c.JSON(status, withWarning[T]{Data: res.Value, Warning: res.Warning()})
}
