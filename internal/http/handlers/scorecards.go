package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

type ScorecardStore interface {
	SaveNew(ctx context.Context, in scorecard.SaveNewInput) (string, error)
	Overwrite(ctx context.Context, filename string, records []domain.ScorecardRecord, user string) (scorecard.OverwriteResult, error)
	Archive(ctx context.Context, filename string) error
	Load(ctx context.Context, filename string) (domain.Scorecard, error)
}

type ScorecardCatalog interface {
	ListActive(ctx context.Context) ([]domain.ScorecardMetadata, error)
	Options(ctx context.Context) (scorecard.OptionsResult, error)
}

type ScorecardHandlerDeps struct {
	Log     *logger.Logger
	Store   ScorecardStore
	Catalog ScorecardCatalog
}

type ScorecardHandler struct {
	log     *logger.Logger
	store   ScorecardStore
	catalog ScorecardCatalog
}

func NewScorecardHandlerWithDeps(deps ScorecardHandlerDeps) *ScorecardHandler {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &ScorecardHandler{
		log:     log.With("handler", "ScorecardHandler"),
		store:   deps.Store,
		catalog: deps.Catalog,
	}
}

type saveScorecardRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Records     []domain.ScorecardRecord `json:"records"`
}

type overwriteScorecardRequest struct {
	Records []domain.ScorecardRecord `json:"records"`
}

func requestUser(c *gin.Context) string {
	return ctxutil.UserOrDefault(c.Request.Context(), domain.UnknownUser)
}

// GET /api/scorecards
func (h *ScorecardHandler) List(c *gin.Context) {
	all, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	def := ""
	if len(all) > 0 {
		def = all[0].Filename
	}
	response.RespondOK(c, gin.H{"scorecards": all, "default": def})
}

// GET /api/scorecards/options
func (h *ScorecardHandler) Options(c *gin.Context) {
	opts, err := h.catalog.Options(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, opts)
}

// POST /api/scorecards
func (h *ScorecardHandler) Save(c *gin.Context) {
	var req saveScorecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	filename, err := h.store.SaveNew(c.Request.Context(), scorecard.SaveNewInput{
		Name:        req.Name,
		Description: req.Description,
		Records:     req.Records,
		User:        requestUser(c),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"filename": filename})
}

// GET /api/scorecards/:filename
func (h *ScorecardHandler) Get(c *gin.Context) {
	sc, err := h.store.Load(c.Request.Context(), c.Param("filename"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, sc)
}

// PUT /api/scorecards/:filename
func (h *ScorecardHandler) Overwrite(c *gin.Context) {
	var req overwriteScorecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Records == nil {
		badRequest(c, errors.New("records is required; send an empty list to archive"))
		return
	}
	res, err := h.store.Overwrite(c.Request.Context(), c.Param("filename"), req.Records, requestUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/scorecards/:filename/archive
func (h *ScorecardHandler) Archive(c *gin.Context) {
	filename := strings.TrimSpace(c.Param("filename"))
	if err := h.store.Archive(c.Request.Context(), filename); err != nil {
		respondErr(c, err)
		return
	}
	h.log.Info("Scorecard archived via API", "filename", filename, "user", requestUser(c))
	response.RespondOK(c, gin.H{"filename": filename, "archived": true})
}
