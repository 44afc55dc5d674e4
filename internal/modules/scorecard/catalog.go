package scorecard

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

const catalogReadConcurrency = 8

type CatalogDeps struct {
	Log     *logger.Logger
	Objects objectstore.Store
	Formats *fileformat.Registry
	Metrics *observability.Metrics
}

// Catalog enumerates live scorecard metadata, newest first.
type Catalog struct {
	log     *logger.Logger
	objects objectstore.Store
	files   *objectstore.Files
	metrics *observability.Metrics
}

func NewCatalog(deps CatalogDeps) *Catalog {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Catalog{
		log:     log.With("service", "ScorecardCatalog"),
		objects: deps.Objects,
		files:   objectstore.NewFiles(deps.Objects, deps.Formats),
		metrics: deps.Metrics,
	}
}

type catalogEntry struct {
	meta domain.ScorecardMetadata
	at   time.Time
	ok   bool
}

// ListActive returns every live sidecar sorted by date descending. Sidecars
// that cannot be decoded or lack a parseable date are skipped with a warning.
// Ties keep listing order.
func (c *Catalog) ListActive(ctx context.Context) (out []domain.ScorecardMetadata, err error) {
	ctx, done := startOp(ctx, c.metrics, "list_active", "")
	defer func() { done(err) }()

	keys, err := c.objects.List(ctx, MetadataPrefix)
	if err != nil {
		return nil, err
	}
	var live []string
	for _, k := range keys {
		if isArchivedKey(k) || path.Ext(k) != ".json" {
			continue
		}
		live = append(live, k)
	}

	entries := make([]catalogEntry, len(live))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogReadConcurrency)
	for i, key := range live {
		g.Go(func() error {
			e, err := c.readEntry(gctx, key)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ok {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].at.After(kept[j].at) })

	out = make([]domain.ScorecardMetadata, 0, len(kept))
	for _, e := range kept {
		out = append(out, e.meta)
	}
	c.metrics.SetCatalogSize(len(out))
	return out, nil
}

// readEntry returns ok=false for entries that should be skipped. Storage
// failures other than a vanished key are returned.
func (c *Catalog) readEntry(ctx context.Context, key string) (catalogEntry, error) {
	var meta domain.ScorecardMetadata
	err := c.files.ReadDocument(ctx, key, &meta)
	switch {
	case objectstore.IsNotExist(err):
		return catalogEntry{}, nil
	case isStorageError(err):
		return catalogEntry{}, err
	case err != nil:
		c.skip(key, "malformed", err)
		return catalogEntry{}, nil
	}
	at, err := meta.ParsedDate()
	if err != nil {
		c.skip(key, "bad_date", err)
		return catalogEntry{}, nil
	}
	if meta.Filename == "" {
		meta.Filename = filenameFromKey(key)
	}
	if meta.User == "" {
		meta.User = domain.UnknownUser
	}
	return catalogEntry{meta: meta, at: at, ok: true}, nil
}

func (c *Catalog) skip(key, reason string, err error) {
	c.log.Warn("skipping scorecard metadata", "key", key, "reason", reason, "error", err)
	c.metrics.IncCatalogSkipped(reason)
}

// Latest returns the newest live scorecard, if any.
func (c *Catalog) Latest(ctx context.Context) (domain.ScorecardMetadata, bool, error) {
	all, err := c.ListActive(ctx)
	if err != nil || len(all) == 0 {
		return domain.ScorecardMetadata{}, false, err
	}
	return all[0], true, nil
}

// DropdownOption is one entry of the scorecard picker.
type DropdownOption struct {
	Value       string `json:"value"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Subtitle    string `json:"subtitle"`
}

type OptionsResult struct {
	Options []DropdownOption `json:"options"`
	Default string           `json:"default,omitempty"`
}

// Options renders the active scorecards for a picker; Default is the newest.
func (c *Catalog) Options(ctx context.Context) (OptionsResult, error) {
	all, err := c.ListActive(ctx)
	if err != nil {
		return OptionsResult{}, err
	}
	res := OptionsResult{Options: make([]DropdownOption, 0, len(all))}
	for _, m := range all {
		res.Options = append(res.Options, DropdownOption{
			Value:       m.Filename,
			Name:        m.Name,
			Description: m.Description,
			Subtitle:    fmt.Sprintf("Saved at: %s by %s", m.Date, m.User),
		})
	}
	if len(all) > 0 {
		res.Default = all[0].Filename
	}
	return res, nil
}

func filenameFromKey(key string) string {
	base := path.Base(key)
	return base[:len(base)-len(path.Ext(base))]
}
