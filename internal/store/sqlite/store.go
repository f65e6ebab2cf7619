// Package sqlite persists directory users and patient records in a single
// SQLite database using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/goliatone/go-intake/pkg/identity"
	"github.com/goliatone/go-intake/pkg/patient"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store implements identity.Users; Patients returns its patient.Store view.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Patients is the patient.Store backed by the same database.
type Patients struct {
	store *Store
}

var (
	_ identity.Users = (*Store)(nil)
	_ patient.Store  = (*Patients)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, id, email, phone, name string) (*identity.User, error) {
	if strings.TrimSpace(id) == "" {
		id = identity.NewID()
	}
	user := identity.User{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: s.now().UTC().Truncate(time.Second)}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Phone, user.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, identity.Conflict("a user with the same id or email already exists")
		}
		return nil, fmt.Errorf("sqlite: insert user: %w", err)
	}
	return &user, nil
}

func (s *Store) Get(ctx context.Context, id string) (*identity.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, email, phone, created_at FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", identity.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}
	return user, nil
}

var userColumns = map[string]string{
	identity.AttrEmail: "email",
	identity.AttrPhone: "phone",
	identity.AttrName:  "name",
	"id":               "id",
}

func (s *Store) List(ctx context.Context, queries ...identity.Query) ([]identity.User, error) {
	var (
		where []string
		args  []any
	)
	for _, q := range queries {
		if q.Method != identity.MethodEqual {
			continue
		}
		column, ok := userColumns[strings.TrimPrefix(q.Attribute, "$")]
		if !ok {
			return nil, fmt.Errorf("sqlite: unsupported attribute %q", q.Attribute)
		}
		if len(q.Values) == 0 {
			return nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?,", len(q.Values)), ",")
		where = append(where, column+" COLLATE NOCASE IN ("+marks+")")
		args = append(args, q.Values...)
	}

	stmt := `SELECT id, name, email, phone, created_at FROM users`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY created_at, rowid"
	if limit := identity.LimitOf(queries); limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	defer rows.Close()

	var users []identity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Patients returns the patient store sharing this database.
func (s *Store) Patients() *Patients {
	return &Patients{store: s}
}

// Create stores p, replacing any earlier record for the same user.
func (ps *Patients) Create(ctx context.Context, p patient.Patient) (*patient.Patient, error) {
	s := ps.store
	if strings.TrimSpace(p.UserID) == "" {
		return nil, patient.ErrUserRequired
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = s.now().UTC().Truncate(time.Second)

	record, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode patient: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patients (id, user_id, record, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET id = excluded.id, record = excluded.record, created_at = excluded.created_at`,
		p.ID, p.UserID, string(record), p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert patient: %w", err)
	}
	return &p, nil
}

func (ps *Patients) GetByUser(ctx context.Context, userID string) (*patient.Patient, error) {
	var record string
	err := ps.store.db.QueryRowContext(ctx, `SELECT record FROM patients WHERE user_id = ?`, userID).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", patient.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get patient: %w", err)
	}
	var p patient.Patient
	if err := json.Unmarshal([]byte(record), &p); err != nil {
		return nil, fmt.Errorf("sqlite: decode patient: %w", err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*identity.User, error) {
	var (
		user    identity.User
		created string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &created); err != nil {
		return nil, err
	}
	if at, err := time.Parse(time.RFC3339, created); err == nil {
		user.CreatedAt = at
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
