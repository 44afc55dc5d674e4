package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx JSON response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	if c.Request != nil {
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			body.RequestID = rd.RequestID
		}
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}

// RespondAPIError writes err with the status and code of the *apierr.Error it
// wraps, or as a 500 internal error. Server errors are attached to the gin
// context for the request logger.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondPNG writes an encoded image that must not be cached.
func RespondPNG(c *gin.Context, data []byte) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}
