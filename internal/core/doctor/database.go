package doctor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Meet0105/repoza-sub001/internal/data/db"
)

// Sweeper removes expired cache entries.
type Sweeper interface {
	SweepExpired(ctx context.Context) error
}

// DatabaseCheck inspects the local SQLite cache. Expired entries are
// reported as fixable and removed when autofix is set.
type DatabaseCheck struct {
	conn    *sql.DB
	sweeper Sweeper
	autofix bool
	now     func() time.Time
}

// NewDatabaseCheck creates a database check.
func NewDatabaseCheck(conn *sql.DB, sweeper Sweeper, autofix bool) *DatabaseCheck {
	return &DatabaseCheck{conn: conn, sweeper: sweeper, autofix: autofix, now: time.Now}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	var integrity string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "integrity",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	if integrity != "ok" {
		result.Items = append(result.Items, CheckItem{
			Label:  "integrity",
			Status: StatusFail,
			Detail: integrity + " (delete the data directory to rebuild the cache)",
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{Label: "integrity", Status: StatusPass})

	result.Items = append(result.Items, c.schemaItem(ctx))
	result.Items = append(result.Items, c.expiredItem(ctx))
	return result
}

func (c *DatabaseCheck) schemaItem(ctx context.Context) CheckItem {
	current, err := db.SchemaVersion(ctx, c.conn)
	if err != nil {
		return CheckItem{Label: "schema", Status: StatusFail, Detail: err.Error()}
	}
	latest, err := db.LatestVersion()
	if err != nil {
		return CheckItem{Label: "schema", Status: StatusFail, Detail: err.Error()}
	}
	if current != latest {
		return CheckItem{
			Label:  "schema",
			Status: StatusWarn,
			Detail: fmt.Sprintf("version %d, this build expects %d", current, latest),
		}
	}
	return CheckItem{Label: "schema", Status: StatusPass, Detail: fmt.Sprintf("version %d", current)}
}

func (c *DatabaseCheck) expiredItem(ctx context.Context) CheckItem {
	var expired int
	err := c.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?",
		c.now().UnixNano(),
	).Scan(&expired)
	if err != nil {
		return CheckItem{Label: "cache", Status: StatusFail, Detail: err.Error()}
	}

	if expired == 0 {
		return CheckItem{Label: "cache", Status: StatusPass, Detail: "no expired entries"}
	}

	if c.autofix && c.sweeper != nil {
		if err := c.sweeper.SweepExpired(ctx); err != nil {
			return CheckItem{Label: "cache", Status: StatusFail, Detail: err.Error()}
		}
		return CheckItem{Label: "cache", Status: StatusPass, Detail: fmt.Sprintf("removed %d expired entries", expired)}
	}

	return CheckItem{
		Label:   "cache",
		Status:  StatusWarn,
		Detail:  fmt.Sprintf("%d expired entries", expired),
		Fixable: true,
	}
}
