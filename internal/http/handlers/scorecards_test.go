package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/http/middleware"
	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/modules/policy"
	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
	"github.com/yungbote/scorecard-dashboard/internal/modules/treemap"
	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

const testCatalogueCSV = "policy_options,flag,very-low,low,medium,high,lens_1,lens_2,default\n" +
	"Space Safety,scalable,1,2,3,4,Space Safety,Space Domain Awareness,True\n" +
	"Galileo Nav,not scalable,,,5,,NAV,Space Transportation,False\n" +
	"Earth Watch,scalable,0.5,1.5,2.5,,EOP,Earth Applications,True\n"

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

// Now advances one second per call so consecutive saves get distinct filenames.
func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type apiFixture struct {
	objects *objectstore.Memory
	router  *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := newTestLogger(t)

	mem := objectstore.NewMemory()
	require.NoError(t, mem.Put(t.Context(), policy.DefaultCatalogueKey, []byte(testCatalogueCSV)))
	formats := fileformat.Default()
	clock := &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	store := scorecard.NewStore(scorecard.StoreDeps{Log: log, Objects: mem, Formats: formats, Clock: clock.Now})
	catalog := scorecard.NewCatalog(scorecard.CatalogDeps{Log: log, Objects: mem, Formats: formats})
	policies := policy.NewService(policy.ServiceDeps{Log: log, Objects: mem, Formats: formats, Scorecards: store})
	renderer, err := treemap.NewRenderer(treemap.Config{Width: 200, Height: 120})
	require.NoError(t, err)

	sh := NewScorecardHandlerWithDeps(ScorecardHandlerDeps{Log: log, Store: store, Catalog: catalog})
	ph := NewPolicyHandlerWithDeps(PolicyHandlerDeps{Log: log, Policies: policies, Treemap: renderer})

	r := gin.New()
	r.Use(middleware.AttachRequestContext())
	r.Use(middleware.NewIdentityMiddleware(log, "").ResolveUser())
	api := r.Group("/api")
	api.GET("/scorecards", sh.List)
	api.GET("/scorecards/options", sh.Options)
	api.POST("/scorecards", sh.Save)
	api.GET("/scorecards/:filename", sh.Get)
	api.PUT("/scorecards/:filename", sh.Overwrite)
	api.POST("/scorecards/:filename/archive", sh.Archive)
	api.GET("/scorecards/:filename/view", ph.ScorecardView)
	api.GET("/policies", ph.Catalogue)
	api.POST("/policies/price", ph.Price)
	api.POST("/policies/treemap.png", ph.PriceTreemap)
	api.GET("/compare", ph.Compare)
	api.GET("/compare/treemap.png", ph.CompareTreemap)

	return &apiFixture{objects: mem, router: r}
}

func (f *apiFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Page-Href", "http://dash.local/dashboard?username=alice")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) save(t *testing.T, name string, records []domain.ScorecardRecord) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/scorecards", gin.H{"name": name, "description": "desc of " + name, "records": records})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Filename string `json:"filename"`
	}
	decode(t, rec, &out)
	return out.Filename
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	decode(t, rec, &env)
	return env.Error.Code
}

var sampleRecords = []domain.ScorecardRecord{
	{ID: "space-safety", OnOff: true, Option: domain.OptionHigh},
	{ID: "galileo-nav", OnOff: true, Option: domain.OptionLow},
	{ID: "earth-watch", OnOff: false, Option: domain.OptionMedium},
}

func TestScorecardLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	first := f.save(t, "Plan A", sampleRecords)
	require.Equal(t, "plana_2024-03-01T09-00-01", first)
	second := f.save(t, "Plan B", sampleRecords[:1])

	rec := f.do(t, http.MethodGet, "/api/scorecards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Scorecards []domain.ScorecardMetadata `json:"scorecards"`
		Default    string                     `json:"default"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Scorecards, 2)
	require.Equal(t, second, list.Default)
	require.Equal(t, "alice", list.Scorecards[0].User)

	rec = f.do(t, http.MethodGet, "/api/scorecards/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sc domain.Scorecard
	decode(t, rec, &sc)
	require.Equal(t, "Plan A", sc.Metadata.Name)
	require.ElementsMatch(t, sampleRecords, sc.Records)

	rec = f.do(t, http.MethodPut, "/api/scorecards/"+first, gin.H{"records": sampleRecords[1:]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ow scorecard.OverwriteResult
	decode(t, rec, &ow)
	require.False(t, ow.Archived)
	require.Equal(t, "Plan A", ow.Metadata.Name)

	rec = f.do(t, http.MethodGet, "/api/scorecards/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts scorecard.OptionsResult
	decode(t, rec, &opts)
	require.Equal(t, first, opts.Default, "overwrite makes the scorecard the newest")

	rec = f.do(t, http.MethodPost, "/api/scorecards/"+second+"/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/scorecards/"+second+"/archive", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, apierr.CodeNotFound, errorCode(t, rec))

	rec = f.do(t, http.MethodPut, "/api/scorecards/"+first, gin.H{"records": []domain.ScorecardRecord{}})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ow)
	require.True(t, ow.Archived)

	rec = f.do(t, http.MethodGet, "/api/scorecards", nil)
	decode(t, rec, &list)
	require.Empty(t, list.Scorecards)
	require.Equal(t, "", list.Default)
}

func TestScorecardErrors(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing description", http.MethodPost, "/api/scorecards", gin.H{"name": "x"}, http.StatusBadRequest, apierr.CodeValidation},
		{"bad option", http.MethodPost, "/api/scorecards", gin.H{"name": "x", "description": "y", "records": []gin.H{{"id": "a", "on_off": true, "option": "extreme"}}}, http.StatusBadRequest, apierr.CodeValidation},
		{"unknown scorecard", http.MethodGet, "/api/scorecards/nope_2024-01-01T00-00-00", nil, http.StatusNotFound, apierr.CodeNotFound},
		{"overwrite without records", http.MethodPut, "/api/scorecards/nope", gin.H{}, http.StatusBadRequest, apierr.CodeValidation},
		{"overwrite unknown", http.MethodPut, "/api/scorecards/nope", gin.H{"records": sampleRecords}, http.StatusNotFound, apierr.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.method, tc.target, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			require.Equal(t, tc.wantCode, errorCode(t, rec))
		})
	}
}

func TestStorageFailureIs500(t *testing.T) {
	f := newAPIFixture(t)
	f.objects.FailOn = map[string]error{"list": errors.New("bucket unreachable")}

	rec := f.do(t, http.MethodGet, "/api/scorecards", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, apierr.CodeStorageIO, errorCode(t, rec))
}

func TestToAPIError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&scorecard.ValidationError{Fields: []string{"name"}}, http.StatusBadRequest, apierr.CodeValidation},
		{fmt.Errorf("wrap: %w", &scorecard.NotFoundError{Filename: "x"}), http.StatusNotFound, apierr.CodeNotFound},
		{&scorecard.ConflictError{Filename: "x"}, http.StatusConflict, apierr.CodeConflict},
		{&fileformat.UnsupportedFormatError{Ext: ".pdf"}, http.StatusUnsupportedMediaType, apierr.CodeUnsupportedFormat},
		{&objectstore.StorageIOError{Op: "get", Key: "k", Err: errors.New("x")}, http.StatusInternalServerError, apierr.CodeStorageIO},
		{fmt.Errorf("read policy catalogue: %w", objectstore.ErrNotExist), http.StatusInternalServerError, apierr.CodeStorageIO},
		{errors.New("other"), http.StatusInternalServerError, apierr.CodeInternal},
	}
	for _, tc := range cases {
		ae := apierr.From(toAPIError(tc.err))
		if ae.Status != tc.status || ae.Code != tc.code {
			t.Fatalf("toAPIError(%v): want=%d/%s got=%d/%s", tc.err, tc.status, tc.code, ae.Status, ae.Code)
		}
	}
}
