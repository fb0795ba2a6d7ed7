package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryJournal is the journal path that keeps entries in memory only.
const MemoryJournal = ":memory:"

// Entry is one recorded desk operation.
type Entry struct {
	ID         int64          `json:"id"`
	Session    string         `json:"session"`
	Day        int            `json:"day"`
	Op         string         `json:"op"`
	PatronID   string         `json:"patron_id,omitempty"`
	ItemID     string         `json:"item_id,omitempty"`
	Outcome    string         `json:"outcome"`
	Details    map[string]any `json:"details,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Journal is an append-only SQLite log of circulation activity. It is an
// audit trail; ledger state is never rebuilt from it.
type Journal struct {
	db      *sql.DB
	session string

	recordStmt *sql.Stmt
}

// OpenJournal opens (or creates) the journal at path and starts a new
// session. Use MemoryJournal for a throwaway journal.
func OpenJournal(path string) (*Journal, error) {
	var dsn string
	memory := path == "" || path == MemoryJournal
	if memory {
		dsn = "file::memory:?_foreign_keys=1"
	} else {
		// Ensure directory exists so first-run succeeds.
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create journal dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// Every new connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	j, err := NewJournalDB(db, uuid.NewString())
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// NewJournalDB wraps an already opened database, applying migrations and
// preparing statements.
func NewJournalDB(db *sql.DB, session string) (*Journal, error) {
	if err := applyMigrations(db); err != nil {
		return nil, err
	}
	j := &Journal{db: db, session: session}
	if err := j.prepareStatements(); err != nil {
		return nil, err
	}
	return j, nil
}

// Session identifies the entries written by this Journal.
func (j *Journal) Session() string { return j.session }

// Close releases prepared statements and closes the DB.
func (j *Journal) Close() error {
	if j.recordStmt != nil {
		j.recordStmt.Close()
	}
	return j.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session TEXT NOT NULL,
            day INTEGER NOT NULL,
            op TEXT NOT NULL,
            patron_id TEXT NOT NULL DEFAULT '',
            item_id TEXT NOT NULL DEFAULT '',
            outcome TEXT NOT NULL,
            payload TEXT NOT NULL DEFAULT '{}',
            recorded_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_entries_patron ON entries(patron_id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func (j *Journal) prepareStatements() error {
	var err error
	j.recordStmt, err = j.db.Prepare(`INSERT INTO entries(session,day,op,patron_id,item_id,outcome,payload,recorded_at) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare record: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// Record appends e, stamping it with the journal session and the current time.
func (j *Journal) Record(e Entry) (int64, error) {
	payload := []byte("{}")
	if len(e.Details) > 0 {
		var err error
		if payload, err = jsoniter.ConfigFastest.Marshal(e.Details); err != nil {
			return 0, fmt.Errorf("encode details: %w", err)
		}
	}
	res, err := j.recordStmt.Exec(j.session, e.Day, e.Op, e.PatronID, e.ItemID, e.Outcome, string(payload), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", e.Op, err)
	}
	return res.LastInsertId()
}

const entryColumns = `id,session,day,op,patron_id,item_id,outcome,payload,recorded_at`

// History returns the most recent entries, oldest first. limit <= 0 means all.
func (j *Journal) History(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	entries, err := j.query(`SELECT `+entryColumns+` FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for l, r := 0, len(entries)-1; l < r; l, r = l+1, r-1 {
		entries[l], entries[r] = entries[r], entries[l]
	}
	return entries, nil
}

// HistoryForPatron returns every entry naming patronID, oldest first.
func (j *Journal) HistoryForPatron(patronID string) ([]*Entry, error) {
	return j.query(`SELECT `+entryColumns+` FROM entries WHERE patron_id=? ORDER BY id ASC`, patronID)
}

func (j *Journal) query(q string, args ...any) ([]*Entry, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Day, &e.Op, &e.PatronID, &e.ItemID, &e.Outcome, &payload, &e.RecordedAt); err != nil {
			return nil, err
		}
		if payload != "" && payload != "{}" {
			if err := jsoniter.ConfigFastest.UnmarshalFromString(payload, &e.Details); err != nil {
				return nil, fmt.Errorf("decode entry %d: %w", e.ID, err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
