package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

const compareLoadConcurrency = 8

// ScorecardLoader reads a saved scorecard by filename.
type ScorecardLoader interface {
	Load(ctx context.Context, filename string) (domain.Scorecard, error)
}

type ServiceDeps struct {
	Log        *logger.Logger
	Objects    objectstore.Store
	Formats    *fileformat.Registry
	Scorecards ScorecardLoader
	Metrics    *observability.Metrics
	// CatalogueKey defaults to DefaultCatalogueKey.
	CatalogueKey string
}

// Service serves the policy catalogue and prices selections against it.
type Service struct {
	log        *logger.Logger
	files      *objectstore.Files
	scorecards ScorecardLoader
	metrics    *observability.Metrics
	key        string
}

func NewService(deps ServiceDeps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	key := strings.TrimSpace(deps.CatalogueKey)
	if key == "" {
		key = DefaultCatalogueKey
	}
	return &Service{
		log:        log.With("service", "PolicyService"),
		files:      objectstore.NewFiles(deps.Objects, deps.Formats),
		scorecards: deps.Scorecards,
		metrics:    deps.Metrics,
		key:        key,
	}
}

func (s *Service) CatalogueKey() string { return s.key }

// Catalogue reads the cost sheet. It is re-read on every call so an edited
// sheet takes effect without a restart.
func (s *Service) Catalogue(ctx context.Context) (cat *Catalogue, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "policy.catalogue", attribute.String("policy.catalogue_key", s.key))
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.ObserveStoreOp("policy_catalogue", status, time.Since(start))
		observability.EndSpan(span, err)
	}()

	t, err := s.files.ReadTable(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read policy catalogue %q: %w", s.key, err)
	}
	cat, err = ParseCatalogue(t)
	if err != nil {
		return nil, fmt.Errorf("parse policy catalogue %q: %w", s.key, err)
	}
	return cat, nil
}

// ReplaceCatalogue writes cat as the new cost sheet.
func (s *Service) ReplaceCatalogue(ctx context.Context, cat *Catalogue) error {
	if err := s.files.WriteTable(ctx, s.key, cat.Table()); err != nil {
		return fmt.Errorf("write policy catalogue %q: %w", s.key, err)
	}
	s.log.Info("policy catalogue replaced", "key", s.key, "policies", cat.Len())
	return nil
}

type View struct {
	Scorecard *domain.Scorecard `json:"scorecard,omitempty"`
	Lens      domain.Lens       `json:"lens"`
	Groups    []Group           `json:"groups"`
	Pricing   Pricing           `json:"pricing"`
}

// View loads a saved scorecard onto the catalogue, grouped by lens and
// filtered by query. A blank filename returns the cleared selection.
func (s *Service) View(ctx context.Context, filename string, lens domain.Lens, query string) (View, error) {
	cat, err := s.Catalogue(ctx)
	if err != nil {
		return View{}, err
	}
	v := View{Lens: lens}
	var states []State
	if strings.TrimSpace(filename) == "" {
		states = cat.Defaults()
	} else {
		sc, err := s.scorecards.Load(ctx, filename)
		if err != nil {
			return View{}, err
		}
		v.Scorecard = &sc
		states = cat.Merge(sc.Records)
	}
	v.Pricing = cat.Price(Records(states), lens)
	v.Groups = cat.GroupStates(cat.FilterStates(states, query), lens)
	return v, nil
}

// Price prices an unsaved selection.
func (s *Service) Price(ctx context.Context, records []domain.ScorecardRecord, lens domain.Lens) (Pricing, error) {
	cat, err := s.Catalogue(ctx)
	if err != nil {
		return Pricing{}, err
	}
	return cat.Price(records, lens), nil
}

// Compare loads the named scorecards concurrently and prices them together.
func (s *Service) Compare(ctx context.Context, filenames []string, groupBy domain.Lens) (Comparison, error) {
	if len(filenames) == 0 {
		return Comparison{GroupBy: groupBy}, nil
	}
	cat, err := s.Catalogue(ctx)
	if err != nil {
		return Comparison{}, err
	}

	cards := make([]domain.Scorecard, len(filenames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareLoadConcurrency)
	for i, name := range filenames {
		g.Go(func() error {
			sc, err := s.scorecards.Load(gctx, name)
			if err != nil {
				return err
			}
			cards[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	res := cat.comparePackages(cards, filenames, groupBy)
	s.log.Debug("scorecards compared", "packages", len(filenames), "group_by", string(groupBy), "total", res.Total)
	return res, nil
}
