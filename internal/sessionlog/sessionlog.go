// Package sessionlog persists a running audit trail of executed commands
// and their diagnostics (spec.md §6.4's domain-stack wiring). The typedef
// registry itself stays in-memory and is cleared at exit exactly as spec.md
// §3.5 and §5 require; only this audit trail is durable. Grounded directly
// on the teacher's db/sqlite.go (local-file vs libsql:// DSN handling,
// MORFX_LIBSQL_AUTH_TOKEN-style env-gated auth) and models/models.go
// (gorm-tagged structs with datatypes.JSON columns).
package sessionlog

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one executed command and its outcome.
type Entry struct {
	ID          uint      `gorm:"primaryKey"`
	SessionID   string    `gorm:"type:varchar(32);index"`
	Command     string    `gorm:"type:text;not null"`
	Dialect     string    `gorm:"type:varchar(16)"`
	Output      string    `gorm:"type:text"`
	Diagnostics datatypes.JSON `gorm:"type:jsonb"`
	Succeeded   bool
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Entry) TableName() string { return "session_entries" }

// Run groups the entries of one process invocation, mirroring the teacher's
// Session model (start/end timestamps, counters).
type Run struct {
	ID          string `gorm:"primaryKey;type:varchar(32)"`
	StartedAt   time.Time `gorm:"autoCreateTime"`
	EndedAt     *time.Time
	EntryCount  int `gorm:"default:0"`
}

func (Run) TableName() string { return "session_runs" }

// Log wraps a gorm.DB bound to the audit schema.
type Log struct {
	db        *gorm.DB
	runID     string
}

// authTokenEnv is the env var gating Turso/libsql authentication, the same
// shape as the teacher's MORFX_LIBSQL_AUTH_TOKEN.
const authTokenEnv = "CDECL_LIBSQL_AUTH_TOKEN"

// Open connects to dsn — a local sqlite file path, or a libsql:///https://
// URL — migrates the schema, and starts a new Run. debug enables gorm's
// info-level query logging.
func Open(dsn string, runID string, debug bool) (*Log, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sessionlog: creating database directory: %w", err)
			}
		}
	}

	gcfg := &gorm.Config{}
	if debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv(authTokenEnv); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("sessionlog: creating libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("sessionlog: connecting: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &Entry{}); err != nil {
		return nil, fmt.Errorf("sessionlog: migrating schema: %w", err)
	}

	if err := db.Create(&Run{ID: runID}).Error; err != nil {
		return nil, fmt.Errorf("sessionlog: starting run: %w", err)
	}

	return &Log{db: db, runID: runID}, nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql")
}

// Append records one executed command line and its rendered output plus
// any diagnostics (already JSON-marshaled by the caller — internal/command
// owns the diag.Diagnostic -> JSON shape).
func (l *Log) Append(command, dialectName, output string, diagnosticsJSON []byte, succeeded bool) error {
	entry := Entry{
		SessionID:   l.runID,
		Command:     command,
		Dialect:     dialectName,
		Output:      output,
		Diagnostics: datatypes.JSON(diagnosticsJSON),
		Succeeded:   succeeded,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("sessionlog: appending entry: %w", err)
	}
	return l.db.Model(&Run{}).Where("id = ?", l.runID).
		UpdateColumn("entry_count", gorm.Expr("entry_count + 1")).Error
}

// Close stamps the run's end time.
func (l *Log) Close() error {
	now := time.Now()
	return l.db.Model(&Run{}).Where("id = ?", l.runID).Update("ended_at", &now).Error
}

// Recent returns the last n entries for the current run, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	var out []Entry
	err := l.db.Where("session_id = ?", l.runID).Order("id desc").Limit(n).Find(&out).Error
	return out, err
}
