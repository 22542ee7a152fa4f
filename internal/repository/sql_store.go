package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"notes-agent/internal/domain"
)

// Dialect selects driver and SQL flavour for a SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const (
	insertNoteSQL = `INSERT INTO notes (title, text) VALUES ($1, $2) ON CONFLICT (title) DO NOTHING`
	fetchNoteSQL  = `SELECT title, text FROM notes WHERE title = $1`

	listTitlesPostgresSQL = `SELECT title FROM notes ORDER BY title COLLATE "C"`
	listTitlesSQLiteSQL   = `SELECT title FROM notes ORDER BY title`

	createTablePostgresSQL = `CREATE TABLE IF NOT EXISTS notes (
	id SERIAL PRIMARY KEY,
	title VARCHAR(200) UNIQUE NOT NULL,
	text TEXT NOT NULL
)`
	createTableSQLiteSQL = `CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(200) UNIQUE NOT NULL,
	text TEXT NOT NULL
)`

	tableExistsPostgresSQL = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`
	tableExistsSQLiteSQL = `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = $1)`
)

var placeholderRe = regexp.MustCompile(`\$\d+`)

// SQLStore keeps notes in a relational table reached through database/sql.
// Every operation checks out its own connection and closes it afterwards;
// the pool holds no idle connections, so nothing is reused between calls.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// ParseDSN maps a connection string onto a dialect and the DSN the driver
// expects. postgres:// and postgresql:// URLs and key=value strings go to
// PostgreSQL; sqlite:// and file: go to SQLite.
func ParseDSN(dsn string) (Dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", errors.New("repository: dsn must not be empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", errors.New("repository: sqlite dsn is missing a path")
		}
		return DialectSQLite, path, nil
	case strings.HasPrefix(dsn, "file:"):
		return DialectSQLite, dsn, nil
	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		return DialectPostgres, dsn, nil
	}
	return "", "", fmt.Errorf("repository: unsupported dsn scheme in %q", redactDSN(dsn))
}

// Open prepares a SQLStore for dsn. No connection is made until the first
// operation.
func Open(dsn string) (*SQLStore, error) {
	dialect, driverDSN, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(string(dialect), driverDSN)
	if err != nil {
		return nil, fmt.Errorf("repository: Open: %w", err)
	}
	db.SetMaxIdleConns(0)
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// InsertIfAbsent inserts the note unless the title is taken.
func (s *SQLStore) InsertIfAbsent(ctx context.Context, title, text string) (bool, error) {
	var inserted bool
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, s.rebind(insertNoteSQL), title, text)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("repository: InsertIfAbsent: %w", err)
	}
	return inserted, nil
}

// FetchByTitle returns nil, nil when no note has this exact title.
func (s *SQLStore) FetchByTitle(ctx context.Context, title string) (*domain.Note, error) {
	var note *domain.Note
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		n := &domain.Note{}
		err := conn.QueryRowContext(ctx, s.rebind(fetchNoteSQL), title).Scan(&n.Title, &n.Text)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		note = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: FetchByTitle: %w", err)
	}
	return note, nil
}

// ListTitles never returns a nil slice on success.
func (s *SQLStore) ListTitles(ctx context.Context) ([]string, error) {
	query := listTitlesSQLiteSQL
	if s.dialect == DialectPostgres {
		query = listTitlesPostgresSQL
	}

	titles := []string{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var title string
			if err := rows.Scan(&title); err != nil {
				return err
			}
			titles = append(titles, title)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListTitles: %w", err)
	}
	return titles, nil
}

// EnsureSchema creates the notes table if it does not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	ddl := createTableSQLiteSQL
	if s.dialect == DialectPostgres {
		ddl = createTablePostgresSQL
	}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, ddl)
		return err
	})
	if err != nil {
		return fmt.Errorf("repository: EnsureSchema: %w", err)
	}
	return nil
}

// TableExists reports whether a table called name is present.
func (s *SQLStore) TableExists(ctx context.Context, name string) (bool, error) {
	query := tableExistsSQLiteSQL
	if s.dialect == DialectPostgres {
		query = tableExistsPostgresSQL
	}
	var exists bool
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, s.rebind(query), name).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("repository: TableExists: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	return fn(conn)
}

// rebind rewrites $N placeholders for drivers that only take '?'.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "…"
	}
	if len(dsn) > 8 {
		return dsn[:8] + "…"
	}
	return dsn
}
