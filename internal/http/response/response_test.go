package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, rec.Body.String())
	}
	return env
}

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("load: %w", apierr.NotFound(errors.New("scorecard \"x\" not found"))),
			wantStatus: http.StatusNotFound,
			wantCode:   apierr.CodeNotFound,
			wantMsg:    "scorecard \"x\" not found",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apierr.CodeInternal,
			wantMsg:    "boom",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d", tc.wantStatus, rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Error.Code != tc.wantCode || env.Error.Message != tc.wantMsg {
				t.Fatalf("envelope: got=%+v", env.Error)
			}
			if tc.wantStatus >= 500 && len(c.Errors) != 1 {
				t.Fatalf("expected error attached to context, got=%d", len(c.Errors))
			}
		})
	}
}

func TestRespondErrorNilErr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondError(c, http.StatusBadRequest, "bad", nil)
	if env := decodeEnvelope(t, rec); env.Error.Message != "unknown error" || env.Error.Code != "bad" {
		t.Fatalf("envelope: got=%+v", env.Error)
	}
}

func TestRespondErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/api/scorecards/x", nil)
	c.Request = req.WithContext(ctxutil.WithRequestData(req.Context(), &ctxutil.RequestData{RequestID: "req-42"}))

	RespondAPIError(c, apierr.NotFound(errors.New("missing")))
	if env := decodeEnvelope(t, rec); env.Error.RequestID != "req-42" {
		t.Fatalf("request_id: want=%q got=%q", "req-42", env.Error.RequestID)
	}
}
