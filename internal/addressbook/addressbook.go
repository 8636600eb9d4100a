// Package addressbook reads contacts straight from the Contacts.app SQLite
// databases. It is read-only; every write goes through the automation bridge.
package addressbook

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
)

// source is one opened account database.
type source struct {
	path string
	db   *sql.DB
}

// Book is a read-only view over every account database under one
// AddressBook directory.
type Book struct {
	dir     string
	sources []source
}

// Open opens every database matching Sources/*/AddressBook-v22.abcddb under
// dir. A leading "~" is expanded to the user's home directory.
func Open(dir string) (*Book, error) {
	if strings.TrimSpace(dir) == "" {
		dir = constants.AddressBookDir
	}
	dir, err := expandHome(dir)
	if err != nil {
		return nil, errors.NewConfigError("addressbook", "cannot resolve home directory", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, constants.AddressBookGlob))
	if err != nil {
		return nil, errors.WrapResource("open", "addressbook", dir, err)
	}
	if len(paths) == 0 {
		return nil, errors.WrapResource("open", "addressbook", dir,
			fmt.Errorf("no databases match %s", constants.AddressBookGlob))
	}
	sort.Strings(paths)

	b := &Book{dir: dir}
	for _, path := range paths {
		db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
		if err != nil {
			_ = b.Close()
			return nil, errors.WrapResource("open", "addressbook", path, err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			_ = b.Close()
			return nil, errors.WrapResource("open", "addressbook", path, err)
		}
		b.sources = append(b.sources, source{path: path, db: db})
	}

	return b, nil
}

// Close closes every database.
func (b *Book) Close() error {
	if b == nil {
		return nil
	}
	var first error
	for _, s := range b.sources {
		if err := s.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	b.sources = nil
	return first
}

// Sources returns the database paths in lookup order.
func (b *Book) Sources() []string {
	paths := make([]string, len(b.sources))
	for i, s := range b.sources {
		paths[i] = s.path
	}
	return paths
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// queryTimeout bounds one query against one database.
func queryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.LookupTimeout)
}

// warnSkipped logs a database that failed a query. Account databases can be
// locked by a running sync, so one bad source does not fail the lookup.
func warnSkipped(ctx context.Context, path string, err error) {
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("source", path).
		Msg("Skipping address book source")
}
