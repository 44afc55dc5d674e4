package scorecard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

type StoreDeps struct {
	Log     *logger.Logger
	Objects objectstore.Store
	Formats *fileformat.Registry
	Metrics *observability.Metrics
	Events  EventSink
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Store persists scorecards as a data file plus a JSON metadata sidecar.
type Store struct {
	log     *logger.Logger
	objects objectstore.Store
	files   *objectstore.Files
	metrics *observability.Metrics
	events  EventSink
	now     func() time.Time
}

func NewStore(deps StoreDeps) *Store {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = nopSink{}
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{
		log:     log.With("service", "ScorecardStore"),
		objects: deps.Objects,
		files:   objectstore.NewFiles(deps.Objects, deps.Formats),
		metrics: deps.Metrics,
		events:  events,
		now:     now,
	}
}

type SaveNewInput struct {
	Name        string
	Description string
	Records     []domain.ScorecardRecord
	User        string
}

// SaveNew writes a new scorecard and returns its generated filename. The data
// file is written before the sidecar.
func (s *Store) SaveNew(ctx context.Context, in SaveNewInput) (filename string, err error) {
	ctx, done := startOp(ctx, s.metrics, "save_new", "")
	defer func() { done(err) }()

	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Fields: missing}
	}
	records, err := normalizeRecords(in.Records)
	if err != nil {
		return "", err
	}

	now := s.now()
	filename = NewFilename(in.Name, now)
	exists, err := s.objects.Exists(ctx, MetadataKey(filename))
	if err != nil {
		return "", err
	}
	if exists {
		return "", &ConflictError{Filename: filename}
	}

	meta := domain.ScorecardMetadata{
		Name:        in.Name,
		Filename:    filename,
		Description: in.Description,
		Date:        now.Format(domain.MetadataDateLayout),
		User:        userOrUnknown(in.User),
	}
	if err := s.files.WriteTable(ctx, DataKey(filename), recordsToTable(records)); err != nil {
		return "", err
	}
	if err := s.files.WriteDocument(ctx, MetadataKey(filename), meta); err != nil {
		return "", err
	}

	s.log.Info("scorecard saved", "filename", filename, "records", len(records), "user", meta.User)
	s.events.PublishScorecardEvent(ctx, Event{Type: EventSaved, Filename: filename, Metadata: &meta})
	return filename, nil
}

type OverwriteResult struct {
	Filename string                   `json:"filename"`
	Archived bool                     `json:"archived"`
	Metadata domain.ScorecardMetadata `json:"metadata"`
}

// Overwrite replaces the records of a live scorecard, keeping its name and
// description. An empty record set archives the scorecard instead.
func (s *Store) Overwrite(ctx context.Context, filename string, records []domain.ScorecardRecord, user string) (res OverwriteResult, err error) {
	ctx, done := startOp(ctx, s.metrics, "overwrite", filename)
	defer func() { done(err) }()

	meta, err := s.Metadata(ctx, filename)
	if err != nil {
		return OverwriteResult{}, err
	}
	res = OverwriteResult{Filename: filename}

	if len(records) == 0 {
		if err := s.moveToArchive(ctx, filename); err != nil {
			return OverwriteResult{}, err
		}
		res.Archived = true
		res.Metadata = meta
		s.log.Info("scorecard archived by empty overwrite", "filename", filename)
		s.events.PublishScorecardEvent(ctx, Event{Type: EventArchived, Filename: filename})
		return res, nil
	}

	normalized, err := normalizeRecords(records)
	if err != nil {
		return OverwriteResult{}, err
	}
	meta.Date = s.now().Format(domain.MetadataDateLayout)
	meta.User = userOrUnknown(user)
	if err := s.files.WriteTable(ctx, DataKey(filename), recordsToTable(normalized)); err != nil {
		return OverwriteResult{}, err
	}
	if err := s.files.WriteDocument(ctx, MetadataKey(filename), meta); err != nil {
		return OverwriteResult{}, err
	}
	res.Metadata = meta

	s.log.Info("scorecard overwritten", "filename", filename, "records", len(normalized), "user", meta.User)
	s.events.PublishScorecardEvent(ctx, Event{Type: EventOverwritten, Filename: filename, Metadata: &meta})
	return res, nil
}

// Archive moves the live sidecar to the archive prefix. The data file stays in place.
func (s *Store) Archive(ctx context.Context, filename string) (err error) {
	ctx, done := startOp(ctx, s.metrics, "archive", filename)
	defer func() { done(err) }()

	if !validFilename(filename) {
		return &NotFoundError{Filename: filename}
	}
	if err := s.moveToArchive(ctx, filename); err != nil {
		return err
	}
	s.log.Info("scorecard archived", "filename", filename)
	s.events.PublishScorecardEvent(ctx, Event{Type: EventArchived, Filename: filename})
	return nil
}

func (s *Store) moveToArchive(ctx context.Context, filename string) error {
	err := objectstore.Move(ctx, s.objects, MetadataKey(filename), ArchivedMetadataKey(filename))
	if objectstore.IsNotExist(err) {
		return &NotFoundError{Filename: filename, Err: err}
	}
	return err
}

// Metadata reads the live sidecar of filename.
func (s *Store) Metadata(ctx context.Context, filename string) (domain.ScorecardMetadata, error) {
	if !validFilename(filename) {
		return domain.ScorecardMetadata{}, &NotFoundError{Filename: filename}
	}
	var meta domain.ScorecardMetadata
	err := s.files.ReadDocument(ctx, MetadataKey(filename), &meta)
	if objectstore.IsNotExist(err) {
		return domain.ScorecardMetadata{}, &NotFoundError{Filename: filename, Err: err}
	}
	if err != nil {
		return domain.ScorecardMetadata{}, err
	}
	if meta.Filename == "" {
		meta.Filename = filename
	}
	if meta.User == "" {
		meta.User = domain.UnknownUser
	}
	return meta, nil
}

// Load reads a live scorecard: its records and its metadata.
func (s *Store) Load(ctx context.Context, filename string) (sc domain.Scorecard, err error) {
	ctx, done := startOp(ctx, s.metrics, "load", filename)
	defer func() { done(err) }()

	meta, err := s.Metadata(ctx, filename)
	if err != nil {
		return domain.Scorecard{}, err
	}
	records, err := s.Records(ctx, filename)
	if err != nil {
		return domain.Scorecard{}, err
	}
	return domain.Scorecard{Metadata: meta, Records: records}, nil
}

// Records reads the data file of filename, live or archived.
func (s *Store) Records(ctx context.Context, filename string) ([]domain.ScorecardRecord, error) {
	if !validFilename(filename) {
		return nil, &NotFoundError{Filename: filename}
	}
	t, err := s.files.ReadTable(ctx, DataKey(filename))
	if objectstore.IsNotExist(err) {
		return nil, &NotFoundError{Filename: filename, Err: err}
	}
	if err != nil {
		return nil, err
	}
	records, err := RecordsFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("decode scorecard %q: %w", filename, err)
	}
	return records, nil
}

func userOrUnknown(user string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	return domain.UnknownUser
}
