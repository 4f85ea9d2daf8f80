package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Meet0105/repoza-sub001/internal/data/db"
)

// corruptCodes are the primary result codes that mean the file on disk is
// not a usable database. Extended codes are masked down before the lookup.
var corruptCodes = map[int]bool{
	sqlite3.SQLITE_CORRUPT:  true,
	sqlite3.SQLITE_NOTADB:   true,
	sqlite3.SQLITE_CANTOPEN: true,
}

// Messages seen when the driver error has been flattened by a wrapper.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsBusyError reports whether another connection holds the write lock.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the cache file must be rebuilt.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return corruptCodes[sqliteErr.Code()&0xff]
	}
	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// QuarantineDatabase moves the database file and its WAL and SHM companions
// aside so the next Open starts from an empty cache. It returns the path the
// main file was moved to, or "" when there was no file.
//
// Stale -wal or -shm files left next to a fresh database would be replayed
// into it, so a companion that cannot be renamed is removed instead.
func QuarantineDatabase(dataDir string, now time.Time) (string, error) {
	live := filepath.Join(dataDir, db.FileName)
	moved := fmt.Sprintf("%s.corrupt-%s", live, now.Format("20060102-150405"))

	if err := os.Rename(live, moved); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("move %s aside: %w", db.FileName, err)
		}
		moved = ""
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		src := live + suffix
		if _, err := os.Stat(src); err != nil {
			continue
		}
		target := moved + suffix
		if moved == "" || os.Rename(src, target) != nil {
			if err := os.Remove(src); err != nil {
				return moved, fmt.Errorf("discard %s: %w", filepath.Base(src), err)
			}
		}
	}

	return moved, nil
}
