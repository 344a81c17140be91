package leadstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool, for teams sharing one
// lead database without Notion.
type PostgresStore struct {
	pool db.Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	business_name     TEXT NOT NULL,
	instagram_handle  TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	address           TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL,
	owner_name        TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	bio               TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	follower_count    INTEGER NOT NULL DEFAULT 0,
	rating            DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count      INTEGER NOT NULL DEFAULT 0,
	category          TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	business_hours    JSONB,
	recent_posts      JSONB,
	status            TEXT NOT NULL DEFAULT 'new',
	notes             TEXT NOT NULL DEFAULT '',
	last_contacted_at TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
`

// NewPostgres connects a pool and ensures the schema exists.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	s := &PostgresStore{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: migrate")
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListExisting(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_name, instagram_handle, email, phone, address
		 FROM leads ORDER BY created_at LIMIT $1`, pgLimit(limit))
	if err != nil {
		return nil, pgErr("list existing", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.BusinessName, &l.InstagramHandle, &l.Email, &l.Phone, &l.Address); err != nil {
			return nil, pgErr("scan existing", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("list existing", err)
	}
	return leads, nil
}

func (s *PostgresStore) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	hours, posts, err := jsonBlobs(lead)
	if err != nil {
		return nil, &StoreError{Kind: KindValidation, Op: "create", Err: err}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (
			id, business_name, instagram_handle, email, phone, address, source,
			owner_name, website, bio, description, follower_count, rating,
			review_count, category, city, location, business_hours, recent_posts,
			status, notes, last_contacted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		id, lead.BusinessName, lead.InstagramHandle, lead.Email, lead.Phone,
		lead.Address, string(lead.Source), lead.OwnerName, lead.Website,
		lead.Bio, lead.Description, lead.FollowerCount, lead.Rating,
		lead.ReviewCount, lead.Category, lead.City, lead.Location,
		hours, posts, string(lead.Status), lead.Notes,
		lead.LastContactedAt, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return nil, pgErr("create", err)
	}

	lead.ID = id
	return &lead, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, upd LeadUpdate) error {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.LastContactedAt != nil {
		add("last_contacted_at", *upd.LastContactedAt)
	}
	args = append(args, id)

	tag, err := s.pool.Exec(ctx,
		"UPDATE leads SET "+strings.Join(sets, ", ")+" WHERE id = $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return pgErr("update", err)
	}
	return checkTag(tag, "update", id)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return pgErr("delete", err)
	}
	return checkTag(tag, "delete", id)
}

func (s *PostgresStore) QueryAll(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_name, instagram_handle, email, phone, address, source,
			owner_name, website, bio, description, follower_count, rating,
			review_count, category, city, location, business_hours, recent_posts,
			status, notes, last_contacted_at, created_at, updated_at
		 FROM leads ORDER BY created_at LIMIT $1`, pgLimit(limit))
	if err != nil {
		return nil, pgErr("query all", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanPgLead(rows)
		if err != nil {
			return nil, pgErr("scan lead", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("query all", err)
	}
	return leads, nil
}

func scanPgLead(rows pgx.Rows) (*model.Lead, error) {
	var (
		l             model.Lead
		source        string
		status        string
		hours, posts  []byte
		lastContacted *time.Time
	)
	err := rows.Scan(
		&l.ID, &l.BusinessName, &l.InstagramHandle, &l.Email, &l.Phone,
		&l.Address, &source, &l.OwnerName, &l.Website, &l.Bio, &l.Description,
		&l.FollowerCount, &l.Rating, &l.ReviewCount, &l.Category, &l.City,
		&l.Location, &hours, &posts, &status, &l.Notes, &lastContacted,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = model.LeadSource(source)
	l.Status = model.LeadStatus(status)
	l.LastContactedAt = lastContacted
	if len(hours) > 0 {
		_ = json.Unmarshal(hours, &l.BusinessHours)
	}
	if len(posts) > 0 {
		_ = json.Unmarshal(posts, &l.RecentPosts)
	}
	return &l, nil
}

func jsonBlobs(l model.Lead) (hours, posts []byte, err error) {
	if len(l.BusinessHours) > 0 {
		if hours, err = json.Marshal(l.BusinessHours); err != nil {
			return nil, nil, eris.Wrap(err, "marshal business hours")
		}
	}
	if len(l.RecentPosts) > 0 {
		if posts, err = json.Marshal(l.RecentPosts); err != nil {
			return nil, nil, eris.Wrap(err, "marshal recent posts")
		}
	}
	return hours, posts, nil
}

func checkTag(tag pgconn.CommandTag, op, id string) error {
	if tag.RowsAffected() == 0 {
		return &StoreError{Kind: KindNotFound, Op: op, Err: eris.Errorf("lead %s not found", id)}
	}
	return nil
}

// pgErr classifies a pgx failure: unique/check/not-null violations are
// validation errors, everything else is connectivity.
func pgErr(op string, err error) *StoreError {
	kind := KindConnectivity
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && strings.HasPrefix(pgxErr.Code, "23") {
		kind = KindValidation
	}
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// pgLimit maps the "no cap" sentinel to NULL-free ALL semantics via a
// very large limit, keeping one query shape for both cases.
func pgLimit(limit int) int {
	if limit <= 0 {
		return 1 << 31
	}
	return limit
}
