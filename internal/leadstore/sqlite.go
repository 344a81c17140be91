package leadstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local and
// single-operator setups.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
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
	rating            REAL NOT NULL DEFAULT 0,
	review_count      INTEGER NOT NULL DEFAULT 0,
	category          TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	business_hours    TEXT,
	recent_posts      TEXT,
	status            TEXT NOT NULL DEFAULT 'new',
	notes             TEXT NOT NULL DEFAULT '',
	last_contacted_at DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
`

// NewSQLite opens (and if needed creates) a SQLite lead store at the
// given path, configured for WAL mode.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListExisting(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_name, instagram_handle, email, phone, address
		 FROM leads ORDER BY created_at LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, sqliteErr("list existing", err)
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.BusinessName, &l.InstagramHandle, &l.Email, &l.Phone, &l.Address); err != nil {
			return nil, sqliteErr("scan existing", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr("list existing", err)
	}
	return leads, nil
}

func (s *SQLiteStore) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	hours, posts, err := marshalBlobs(lead)
	if err != nil {
		return nil, &StoreError{Kind: KindValidation, Op: "create", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (
			id, business_name, instagram_handle, email, phone, address, source,
			owner_name, website, bio, description, follower_count, rating,
			review_count, category, city, location, business_hours, recent_posts,
			status, notes, last_contacted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, lead.BusinessName, lead.InstagramHandle, lead.Email, lead.Phone,
		lead.Address, string(lead.Source), lead.OwnerName, lead.Website,
		lead.Bio, lead.Description, lead.FollowerCount, lead.Rating,
		lead.ReviewCount, lead.Category, lead.City, lead.Location,
		hours, posts, string(lead.Status), lead.Notes,
		lead.LastContactedAt, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return nil, sqliteErr("create", err)
	}

	lead.ID = id
	return &lead, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, upd LeadUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.LastContactedAt != nil {
		sets = append(sets, "last_contacted_at = ?")
		args = append(args, *upd.LastContactedAt)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE leads SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return sqliteErr("update", err)
	}
	return checkAffected(res, "update", id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return sqliteErr("delete", err)
	}
	return checkAffected(res, "delete", id)
}

func (s *SQLiteStore) QueryAll(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_name, instagram_handle, email, phone, address, source,
			owner_name, website, bio, description, follower_count, rating,
			review_count, category, city, location, business_hours, recent_posts,
			status, notes, last_contacted_at, created_at, updated_at
		 FROM leads ORDER BY created_at LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, sqliteErr("query all", err)
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, sqliteErr("scan lead", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr("query all", err)
	}
	return leads, nil
}

func scanLead(rows *sql.Rows) (*model.Lead, error) {
	var (
		l             model.Lead
		source        string
		status        string
		hours, posts  sql.NullString
		lastContacted sql.NullTime
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
	if lastContacted.Valid {
		t := lastContacted.Time
		l.LastContactedAt = &t
	}
	if hours.Valid && hours.String != "" {
		_ = json.Unmarshal([]byte(hours.String), &l.BusinessHours)
	}
	if posts.Valid && posts.String != "" {
		_ = json.Unmarshal([]byte(posts.String), &l.RecentPosts)
	}
	return &l, nil
}

func marshalBlobs(l model.Lead) (hours, posts sql.NullString, err error) {
	if len(l.BusinessHours) > 0 {
		b, merr := json.Marshal(l.BusinessHours)
		if merr != nil {
			return hours, posts, eris.Wrap(merr, "marshal business hours")
		}
		hours = sql.NullString{String: string(b), Valid: true}
	}
	if len(l.RecentPosts) > 0 {
		b, merr := json.Marshal(l.RecentPosts)
		if merr != nil {
			return hours, posts, eris.Wrap(merr, "marshal recent posts")
		}
		posts = sql.NullString{String: string(b), Valid: true}
	}
	return hours, posts, nil
}

func checkAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return sqliteErr(op, err)
	}
	if n == 0 {
		return &StoreError{Kind: KindNotFound, Op: op, Err: eris.Errorf("lead %s not found", id)}
	}
	return nil
}

// sqliteErr classifies a database/sql failure: constraint violations are
// validation errors, everything else is connectivity.
func sqliteErr(op string, err error) *StoreError {
	kind := KindConnectivity
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		kind = KindValidation
	}
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// normalizeLimit turns the "no cap" sentinel into SQLite's -1 unlimited
// LIMIT value.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
