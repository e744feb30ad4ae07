package plugin

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Audit is an append-only record of skin applications backed by SQLite.
// Optional: a nil *Audit on the plugin disables recording.
type Audit struct {
	db *sql.DB
}

// AuditRow is one recorded skin application. Target is "item" or
// "entity" depending on what the skin landed on.
type AuditRow struct {
	ID     int64        `json:"id"`
	TS     int64        `json:"ts"`
	User   world.UserID `json:"user"`
	ItemID int32        `json:"item_id"`
	SkinID uint64       `json:"skin_id"`
	Target string       `json:"target"`
}

// OpenAudit opens (creating if needed) the audit database at path.
func OpenAudit(path string) (*Audit, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("plugin: open audit db %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS skin_audit (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	ts      INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	item_id INTEGER NOT NULL,
	skin_id INTEGER NOT NULL,
	target  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS skin_audit_ts ON skin_audit(ts);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("plugin: init audit schema: %w", err)
	}
	return &Audit{db: db}, nil
}

func (a *Audit) Close() error {
	return a.db.Close()
}

// Record appends one skin application.
func (a *Audit) Record(ts int64, user world.UserID, itemID int32, skinID uint64, target string) error {
	_, err := a.db.Exec(
		`INSERT INTO skin_audit (ts, user_id, item_id, skin_id, target) VALUES (?, ?, ?, ?, ?)`,
		ts, uint64(user), itemID, skinID, target,
	)
	if err != nil {
		return fmt.Errorf("plugin: record audit: %w", err)
	}
	return nil
}

// Recent returns the newest rows, most recent first.
func (a *Audit) Recent(limit int) ([]AuditRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Query(
		`SELECT id, ts, user_id, item_id, skin_id, target FROM skin_audit ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("plugin: query audit: %w", err)
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var r AuditRow
		var user uint64
		if err := rows.Scan(&r.ID, &r.TS, &user, &r.ItemID, &r.SkinID, &r.Target); err != nil {
			return nil, fmt.Errorf("plugin: scan audit row: %w", err)
		}
		r.User = world.UserID(user)
		out = append(out, r)
	}
	return out, rows.Err()
}
