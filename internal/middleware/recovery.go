package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/logger"
)

// RecoveryMiddleware turns a panicking handler into a 500 ErrorResponse.
// The panic value and stack are logged with the request id. If the handler
// already started writing, the response is left as is and only aborted.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			rid, _ := c.Get(RequestIDKey)

			log := logger.With("http")
			log.Error().
				Err(err).
				Str("request_id", toString(rid)).
				Str("path", c.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
		}()

		c.Next()
	}
}
