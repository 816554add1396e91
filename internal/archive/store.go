package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/onthisday/internal/model"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schema = `
CREATE TABLE IF NOT EXISTS archived_days (
	month      SMALLINT    NOT NULL,
	day        SMALLINT    NOT NULL,
	stored_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (month, day)
);

CREATE TABLE IF NOT EXISTS timeline_events (
	month         SMALLINT NOT NULL,
	day           SMALLINT NOT NULL,
	id            TEXT     NOT NULL,
	position      INTEGER  NOT NULL,
	year          INTEGER  NOT NULL,
	category      TEXT     NOT NULL,
	text          TEXT     NOT NULL,
	wikipedia_url TEXT     NOT NULL DEFAULT '',
	PRIMARY KEY (month, day, position)
);

CREATE INDEX IF NOT EXISTS timeline_events_id_idx ON timeline_events (id);
`

// Store reads and writes archived days.
type Store struct {
	db     DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store over db.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureSchema creates the archive tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

// LoadDay returns the stored events of month/day in display order.
// The bool is false when the day was never archived.
func (s *Store) LoadDay(ctx context.Context, month, day int) ([]model.TimelineEvent, bool, error) {
	var archived bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM archived_days WHERE month = $1 AND day = $2)`,
		month, day,
	).Scan(&archived)
	if err != nil {
		return nil, false, fmt.Errorf("check archived day %d/%d: %w", month, day, err)
	}
	if !archived {
		return nil, false, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, position, year, category, text, wikipedia_url
		FROM timeline_events
		WHERE month = $1 AND day = $2
		ORDER BY position
	`, month, day)
	if err != nil {
		return nil, false, fmt.Errorf("query archived events %d/%d: %w", month, day, err)
	}
	stored, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, false, fmt.Errorf("scan archived events %d/%d: %w", month, day, err)
	}

	events := make([]model.TimelineEvent, 0, len(stored))
	for _, r := range stored {
		e, err := r.toModel()
		if err != nil {
			return nil, false, fmt.Errorf("decode archived event %s: %w", r.ID, err)
		}
		events = append(events, e)
	}
	return events, true, nil
}

// SaveDay upserts the events of month/day and marks the day archived.
// The whole batch runs in one implicit transaction.
func (s *Store) SaveDay(ctx context.Context, month, day int, events []model.TimelineEvent) error {
	start := s.now()

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM timeline_events WHERE month = $1 AND day = $2`, month, day)
	for i, e := range events {
		r := toRow(i, e)
		batch.Queue(`
			INSERT INTO timeline_events (month, day, id, position, year, category, text, wikipedia_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (month, day, position) DO UPDATE
			SET id = EXCLUDED.id, year = EXCLUDED.year, category = EXCLUDED.category,
			    text = EXCLUDED.text, wikipedia_url = EXCLUDED.wikipedia_url
		`, month, day, r.ID, r.Position, r.Year, r.Category, r.Text, r.WikipediaURL)
	}
	batch.Queue(`
		INSERT INTO archived_days (month, day, stored_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (month, day) DO UPDATE SET stored_at = EXCLUDED.stored_at
	`, month, day, start.UTC())

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save archived day %d/%d: %w", month, day, err)
		}
	}

	s.logger.Debug("archived day",
		"month", month,
		"day", day,
		"events", len(events),
		"duration", s.now().Sub(start),
	)
	return nil
}

// eventRow is the timeline_events row shape.
type eventRow struct {
	ID           string `db:"id"`
	Position     int    `db:"position"`
	Year         int    `db:"year"`
	Category     string `db:"category"`
	Text         string `db:"text"`
	WikipediaURL string `db:"wikipedia_url"`
}

func toRow(position int, e model.TimelineEvent) eventRow {
	id := e.ID
	if id == "" {
		id = model.EventID(e.Category, e.Year, e.Text)
	}
	return eventRow{
		ID:           id,
		Position:     position,
		Year:         e.Year,
		Category:     string(e.Category),
		Text:         e.Text,
		WikipediaURL: e.WikipediaURL,
	}
}

func (r eventRow) toModel() (model.TimelineEvent, error) {
	c, err := model.ParseCategory(r.Category)
	if err != nil {
		return model.TimelineEvent{}, err
	}
	e := model.NewTimelineEvent(c, r.Year, r.Text, r.WikipediaURL)
	e.ID = r.ID
	return e, nil
}
