package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventsync/internal/model"
)

// Postgres stores events in a single table under a configurable schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
}

// OpenPostgres connects a pool to the given DSN. Schema defaults to public.
func OpenPostgres(ctx context.Context, dsn, schema string, maxConns int) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if schema == "" {
		schema = "public"
	}
	return &Postgres{pool: pool, schema: schema}, nil
}

// Init creates the events table and its indexes if they do not exist.
func (p *Postgres) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, p.schema),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id                  uuid PRIMARY KEY,
  title               text NOT NULL,
  description         text NOT NULL DEFAULT '',
  start_date          timestamptz NOT NULL,
  end_date            timestamptz,
  timezone            text NOT NULL DEFAULT 'Australia/Sydney',
  venue               jsonb NOT NULL DEFAULT '{}',
  category            text NOT NULL DEFAULT 'Other',
  tags                text[] NOT NULL DEFAULT '{}',
  image_url           text NOT NULL DEFAULT '',
  images              text[] NOT NULL DEFAULT '{}',
  price               jsonb NOT NULL DEFAULT '{}',
  source_name         text NOT NULL,
  source_url          text NOT NULL,
  source_external_id  text NOT NULL,
  status              text NOT NULL DEFAULT 'new',
  content_hash        text NOT NULL,
  change_log          jsonb NOT NULL DEFAULT '[]',
  first_scraped       timestamptz NOT NULL,
  last_scraped        timestamptz NOT NULL,
  scraped_count       integer NOT NULL DEFAULT 1,
  imported            jsonb NOT NULL DEFAULT '{"status":false}',
  click_count         integer NOT NULL DEFAULT 0,
  email_capture_count integer NOT NULL DEFAULT 0,
  created_at          timestamptz NOT NULL DEFAULT now(),
  updated_at          timestamptz NOT NULL DEFAULT now()
)`, p.table()),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS events_source_key ON %s (source_name, source_external_id)`, p.table()),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS events_source_url ON %s (source_url)`, p.table()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS events_start_city ON %s (start_date, (venue->>'city'))`, p.table()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS events_status_start ON %s (status, start_date)`, p.table()),
	}
	for _, q := range stmts {
		if _, err := p.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) table() string {
	return fmt.Sprintf(`"%s".events`, p.schema)
}

const eventColumns = `
  id, title, description, start_date, end_date, timezone, venue, category,
  tags, image_url, images, price, source_name, source_url, source_external_id,
  status, content_hash, change_log, first_scraped, last_scraped, scraped_count,
  imported, click_count, email_capture_count, created_at, updated_at`

func (p *Postgres) FindByURL(ctx context.Context, url string) (*model.Event, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE source_url = $1`, eventColumns, p.table())
	return p.queryOne(ctx, q, url)
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*model.Event, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, eventColumns, p.table())
	return p.queryOne(ctx, q, id)
}

func (p *Postgres) queryOne(ctx context.Context, q string, args ...any) (*model.Event, error) {
	row := p.pool.QueryRow(ctx, q, args...)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (p *Postgres) UpsertByKey(ctx context.Context, ev *model.Event) (*model.Event, error) {
	venue, price, imported, changeLog, err := marshalJSONCols(ev)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
ON CONFLICT (source_name, source_external_id) DO UPDATE SET
  last_scraped  = EXCLUDED.last_scraped,
  scraped_count = %s.scraped_count + 1,
  updated_at    = EXCLUDED.updated_at
RETURNING %s`, p.table(), eventColumns, p.table(), eventColumns)

	row := p.pool.QueryRow(ctx, q,
		ev.ID, ev.Title, ev.Description, ev.StartDate, ev.EndDate, ev.Timezone,
		venue, ev.Category, notNil(ev.Tags), ev.ImageURL, notNil(ev.Images), price,
		ev.Source.Name, ev.Source.URL, ev.Source.ExternalID,
		ev.Status, ev.ContentHash, changeLog,
		ev.FirstScraped, ev.LastScraped, ev.ScrapedCount,
		imported, ev.ClickCount, ev.EmailCaptureCount,
		ev.CreatedAt, ev.UpdatedAt,
	)
	stored, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}
	return stored, nil
}

func (p *Postgres) FindFuzzyCandidates(ctx context.Context, from, to time.Time, city string) ([]*model.Event, error) {
	q := fmt.Sprintf(`
SELECT %s FROM %s
WHERE start_date >= $1 AND start_date <= $2 AND venue->>'city' = $3
ORDER BY created_at, id`, eventColumns, p.table())

	rows, err := p.pool.Query(ctx, q, from, to, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (p *Postgres) Save(ctx context.Context, ev *model.Event) error {
	venue, price, imported, changeLog, err := marshalJSONCols(ev)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
UPDATE %s SET
  title = $2, description = $3, start_date = $4, end_date = $5, timezone = $6,
  venue = $7, category = $8, tags = $9, image_url = $10, images = $11,
  price = $12, source_name = $13, source_url = $14, source_external_id = $15,
  status = $16, content_hash = $17, change_log = $18,
  first_scraped = $19, last_scraped = $20, scraped_count = $21,
  imported = $22, click_count = $23, email_capture_count = $24, updated_at = $25
WHERE id = $1`, p.table())

	tag, err := p.pool.Exec(ctx, q,
		ev.ID, ev.Title, ev.Description, ev.StartDate, ev.EndDate, ev.Timezone,
		venue, ev.Category, notNil(ev.Tags), ev.ImageURL, notNil(ev.Images), price,
		ev.Source.Name, ev.Source.URL, ev.Source.ExternalID,
		ev.Status, ev.ContentHash, changeLog,
		ev.FirstScraped, ev.LastScraped, ev.ScrapedCount,
		imported, ev.ClickCount, ev.EmailCaptureCount, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) MarkInactive(ctx context.Context, sourceName string, seenURLs []string) (int64, error) {
	q := fmt.Sprintf(`
UPDATE %s SET status = $1, last_scraped = now(), updated_at = now()
WHERE source_name = $2 AND NOT (source_url = ANY($3)) AND status <> $1`, p.table())

	tag, err := p.pool.Exec(ctx, q, model.StatusInactive, sourceName, seenURLs)
	if err != nil {
		return 0, fmt.Errorf("mark inactive: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	q := fmt.Sprintf(`
DELETE FROM %s
WHERE start_date < now() - make_interval(days => $1)
  AND status = $2
  AND (imported->>'status')::boolean = false`, p.table())

	tag, err := p.pool.Exec(ctx, q, daysOld, model.StatusInactive)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) CountByStatus(ctx context.Context) (map[string]int64, error) {
	q := fmt.Sprintf(`SELECT status, count(*) FROM %s GROUP BY status`, p.table())
	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// notNil keeps NOT NULL array columns happy when a slice was never set.
func notNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func marshalJSONCols(ev *model.Event) (venue, price, imported, changeLog []byte, err error) {
	if venue, err = json.Marshal(ev.Venue); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal venue: %w", err)
	}
	if price, err = json.Marshal(ev.Price); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal price: %w", err)
	}
	if imported, err = json.Marshal(ev.Imported); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal imported: %w", err)
	}
	if ev.ChangeLog == nil {
		changeLog = []byte("[]")
	} else if changeLog, err = json.Marshal(ev.ChangeLog); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal change log: %w", err)
	}
	return venue, price, imported, changeLog, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var ev model.Event
	var venue, price, imported, changeLog []byte
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.StartDate, &ev.EndDate, &ev.Timezone,
		&venue, &ev.Category, &ev.Tags, &ev.ImageURL, &ev.Images, &price,
		&ev.Source.Name, &ev.Source.URL, &ev.Source.ExternalID,
		&ev.Status, &ev.ContentHash, &changeLog,
		&ev.FirstScraped, &ev.LastScraped, &ev.ScrapedCount,
		&imported, &ev.ClickCount, &ev.EmailCaptureCount,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(venue, &ev.Venue); err != nil {
		return nil, fmt.Errorf("unmarshal venue: %w", err)
	}
	if err := json.Unmarshal(price, &ev.Price); err != nil {
		return nil, fmt.Errorf("unmarshal price: %w", err)
	}
	if err := json.Unmarshal(imported, &ev.Imported); err != nil {
		return nil, fmt.Errorf("unmarshal imported: %w", err)
	}
	if len(changeLog) > 0 {
		if err := json.Unmarshal(changeLog, &ev.ChangeLog); err != nil {
			return nil, fmt.Errorf("unmarshal change log: %w", err)
		}
	}
	return &ev, nil
}
