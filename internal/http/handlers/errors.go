package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

// toAPIError attaches an HTTP status and code to the store and catalogue errors.
// A missing key that is not a scorecard (the policy catalogue) is a server
// side storage problem.
func toAPIError(err error) error {
	var (
		ve *scorecard.ValidationError
		ne *scorecard.NotFoundError
		ce *scorecard.ConflictError
		ue *fileformat.UnsupportedFormatError
		ie *objectstore.StorageIOError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return apierr.BadRequest(apierr.CodeValidation, err)
	case errors.As(err, &ne):
		return apierr.NotFound(err)
	case errors.As(err, &ce):
		return apierr.New(http.StatusConflict, apierr.CodeConflict, err)
	case errors.As(err, &ue):
		return apierr.New(http.StatusUnsupportedMediaType, apierr.CodeUnsupportedFormat, err)
	case errors.As(err, &ie), objectstore.IsNotExist(err):
		return apierr.New(http.StatusInternalServerError, apierr.CodeStorageIO, err)
	default:
		return err
	}
}

func respondErr(c *gin.Context, err error) {
	response.RespondAPIError(c, toAPIError(err))
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
}
