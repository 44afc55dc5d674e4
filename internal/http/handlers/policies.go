package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/modules/policy"
	"github.com/yungbote/scorecard-dashboard/internal/modules/treemap"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

type PolicyService interface {
	View(ctx context.Context, filename string, lens domain.Lens, query string) (policy.View, error)
	Price(ctx context.Context, records []domain.ScorecardRecord, lens domain.Lens) (policy.Pricing, error)
	Compare(ctx context.Context, filenames []string, groupBy domain.Lens) (policy.Comparison, error)
}

type TreemapRenderer interface {
	Render(root *treemap.Node) ([]byte, error)
}

type PolicyHandlerDeps struct {
	Log      *logger.Logger
	Policies PolicyService
	Treemap  TreemapRenderer
}

type PolicyHandler struct {
	log      *logger.Logger
	policies PolicyService
	treemap  TreemapRenderer
}

func NewPolicyHandlerWithDeps(deps PolicyHandlerDeps) *PolicyHandler {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &PolicyHandler{
		log:      log.With("handler", "PolicyHandler"),
		policies: deps.Policies,
		treemap:  deps.Treemap,
	}
}

type priceRequest struct {
	Lens    string                   `json:"lens"`
	Records []domain.ScorecardRecord `json:"records"`
}

func lensParam(c *gin.Context, name string) (domain.Lens, bool) {
	raw := c.Query(name)
	lens, ok := domain.ParseLens(raw)
	if !ok {
		badRequest(c, fmt.Errorf("unknown %s %q", name, raw))
	}
	return lens, ok
}

// GET /api/policies
func (h *PolicyHandler) Catalogue(c *gin.Context) {
	h.view(c, "")
}

// GET /api/scorecards/:filename/view
func (h *PolicyHandler) ScorecardView(c *gin.Context) {
	h.view(c, c.Param("filename"))
}

func (h *PolicyHandler) view(c *gin.Context, filename string) {
	lens, ok := lensParam(c, "lens")
	if !ok {
		return
	}
	v, err := h.policies.View(c.Request.Context(), filename, lens, c.Query("search"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, v)
}

func (h *PolicyHandler) price(c *gin.Context) (policy.Pricing, bool) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return policy.Pricing{}, false
	}
	lens, ok := domain.ParseLens(req.Lens)
	if !ok {
		badRequest(c, fmt.Errorf("unknown lens %q", req.Lens))
		return policy.Pricing{}, false
	}
	pr, err := h.policies.Price(c.Request.Context(), req.Records, lens)
	if err != nil {
		respondErr(c, err)
		return policy.Pricing{}, false
	}
	return pr, true
}

// POST /api/policies/price
func (h *PolicyHandler) Price(c *gin.Context) {
	if pr, ok := h.price(c); ok {
		response.RespondOK(c, pr)
	}
}

// POST /api/policies/treemap.png
func (h *PolicyHandler) PriceTreemap(c *gin.Context) {
	pr, ok := h.price(c)
	if !ok {
		return
	}
	h.renderTree(c, pr.Tree())
}

func (h *PolicyHandler) compare(c *gin.Context) (policy.Comparison, bool) {
	groupBy, ok := lensParam(c, "group_by")
	if !ok {
		return policy.Comparison{}, false
	}
	cmp, err := h.policies.Compare(c.Request.Context(), c.QueryArray("filename"), groupBy)
	if err != nil {
		respondErr(c, err)
		return policy.Comparison{}, false
	}
	return cmp, true
}

// GET /api/compare
func (h *PolicyHandler) Compare(c *gin.Context) {
	if cmp, ok := h.compare(c); ok {
		response.RespondOK(c, cmp)
	}
}

// GET /api/compare/treemap.png
func (h *PolicyHandler) CompareTreemap(c *gin.Context) {
	cmp, ok := h.compare(c)
	if !ok {
		return
	}
	h.renderTree(c, cmp.Tree())
}

func (h *PolicyHandler) renderTree(c *gin.Context, root *treemap.Node) {
	img, err := h.treemap.Render(root)
	if err != nil {
		h.log.Error("Treemap render failed", "error", err)
		respondErr(c, err)
		return
	}
	response.RespondPNG(c, img)
}
