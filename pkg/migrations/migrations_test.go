package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/mattn/go-sqlite3"

	schema "github.com/akeren/go-waitlist/migrations"
)

type testLogger struct {
	infos  []string
	warns  []string
	errors []string
}

func (l *testLogger) Info(msg string, _ ...any)  { l.infos = append(l.infos, msg) }
func (l *testLogger) Warn(msg string, _ ...any)  { l.warns = append(l.warns, msg) }
func (l *testLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }

func (l *testLogger) hasInfo(msg string) bool {
	for _, m := range l.infos {
		if m == msg {
			return true
		}
	}
	return false
}

type fakeMigrator struct {
	upErr error
}

func (m *fakeMigrator) Up() error { return m.upErr }
func (m *fakeMigrator) Close() (error, error) {
	return nil, nil
}

type blockingMigrator struct {
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

func newBlockingMigrator() *blockingMigrator {
	return &blockingMigrator{closeCh: make(chan struct{})}
}

func (m *blockingMigrator) Up() error {
	<-m.closeCh
	return nil
}

func (m *blockingMigrator) Close() (error, error) {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		close(m.closeCh)
	})
	return nil, nil
}

var testMigrationsFS = fstest.MapFS{
	"000001_init.up.sql":   {Data: []byte("CREATE TABLE t (id TEXT);")},
	"000001_init.down.sql": {Data: []byte("DROP TABLE t;")},
}

func stubFactories(t *testing.T, m migrator) {
	t.Helper()

	origDriverFactory := driverFactory
	origMigratorFactory := migratorFactory
	t.Cleanup(func() {
		driverFactory = origDriverFactory
		migratorFactory = origMigratorFactory
	})

	driverFactory = func(_ *sql.DB, _ Config) (database.Driver, error) { return nil, nil }
	migratorFactory = func(_ source.Driver, _ string, _ database.Driver) (migrator, error) {
		return m, nil
	}
}

func TestUp_NilDB(t *testing.T) {
	if err := Up(context.Background(), nil, Config{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUp_ContextAlreadyCancelled_ReturnsCtxErr(t *testing.T) {
	origDriverFactory := driverFactory
	t.Cleanup(func() { driverFactory = origDriverFactory })

	called := atomic.Bool{}
	driverFactory = func(_ *sql.DB, _ Config) (database.Driver, error) {
		called.Store(true)
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Up(ctx, &sql.DB{}, Config{FS: testMigrationsFS})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called.Load() {
		t.Fatalf("expected no driver creation when ctx already cancelled")
	}
}

func TestUp_ContextDeadlineExceeded_ReturnsCtxErr_AndCloses(t *testing.T) {
	block := newBlockingMigrator()
	stubFactories(t, block)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Up(ctx, &sql.DB{}, Config{FS: testMigrationsFS})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if !block.closed.Load() {
		t.Fatalf("expected migrator.Close to be attempted on ctx cancellation")
	}
}

func TestUp_ErrNoChange_ReturnsNil(t *testing.T) {
	stubFactories(t, &fakeMigrator{upErr: migrate.ErrNoChange})
	logger := &testLogger{}

	if err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS, Logger: logger}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !logger.hasInfo("No migrations to apply") {
		t.Fatalf("expected 'No migrations to apply' log")
	}
}

func TestUp_Success_LogsApplied(t *testing.T) {
	stubFactories(t, &fakeMigrator{})
	logger := &testLogger{}

	if err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS, Logger: logger}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !logger.hasInfo("Migrations applied successfully") {
		t.Fatalf("expected 'Migrations applied successfully' log")
	}
}

func TestUp_UpErrorIsWrapped(t *testing.T) {
	stubFactories(t, &fakeMigrator{upErr: errors.New("syntax error")})

	err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS})
	if err == nil || !strings.Contains(err.Error(), "migrations: up") {
		t.Fatalf("expected wrapped up error, got %v", err)
	}
}

func TestUp_DefaultsDialectAndTable(t *testing.T) {
	origDriverFactory := driverFactory
	origMigratorFactory := migratorFactory
	t.Cleanup(func() {
		driverFactory = origDriverFactory
		migratorFactory = origMigratorFactory
	})

	var gotCfg Config
	var gotDialect string
	driverFactory = func(_ *sql.DB, cfg Config) (database.Driver, error) {
		gotCfg = cfg
		return nil, nil
	}
	migratorFactory = func(_ source.Driver, dialect string, _ database.Driver) (migrator, error) {
		gotDialect = dialect
		return &fakeMigrator{upErr: migrate.ErrNoChange}, nil
	}

	if err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotCfg.MigrationsTable != "schema_migrations" {
		t.Fatalf("expected migrations table to be defaulted, got %q", gotCfg.MigrationsTable)
	}
	if gotDialect != DialectPostgres {
		t.Fatalf("expected postgres dialect by default, got %q", gotDialect)
	}
}

func TestUp_UnsupportedDialect(t *testing.T) {
	err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS, Dialect: "mysql"})
	if err == nil || !strings.Contains(err.Error(), "unsupported dialect") {
		t.Fatalf("expected unsupported dialect error, got %v", err)
	}
}

func TestUp_MigratorInitError(t *testing.T) {
	origDriverFactory := driverFactory
	origMigratorFactory := migratorFactory
	t.Cleanup(func() {
		driverFactory = origDriverFactory
		migratorFactory = origMigratorFactory
	})

	driverFactory = func(_ *sql.DB, _ Config) (database.Driver, error) { return nil, nil }
	migratorFactory = func(_ source.Driver, _ string, _ database.Driver) (migrator, error) {
		return nil, errors.New("boom")
	}

	err := Up(context.Background(), &sql.DB{}, Config{FS: testMigrationsFS})
	if err == nil || !strings.Contains(err.Error(), "migrations: init") {
		t.Fatalf("expected wrapped init error, got %v", err)
	}
}

func TestResolveSource_PrefersFSThenDir(t *testing.T) {
	fsys, origin, err := resolveSource(Config{FS: testMigrationsFS, Dir: "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if origin != "embedded" {
		t.Fatalf("expected embedded origin, got %q", origin)
	}
	if _, err := fs.Stat(fsys, "000001_init.up.sql"); err != nil {
		t.Fatalf("expected embedded file to be visible: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "my migrations dir")
	_, origin, err = resolveSource(Config{Dir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	abs, _ := filepath.Abs(dir)
	if origin != abs {
		t.Fatalf("expected origin %q, got %q", abs, origin)
	}
}

func TestUp_AppliesEmbeddedSchemaToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waitlist.db")

	migrationDB, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Up(context.Background(), migrationDB, Config{Dialect: DialectSQLite, FS: schema.FS}); err != nil {
		t.Fatalf("expected migrations to apply, got %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO waitlist_entries (email, first_name, last_name, notes) VALUES ('a@example.com', 'A', 'B', '')`); err != nil {
		t.Fatalf("expected table to exist: %v", err)
	}

	// A second run is a no-op.
	again, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Up(context.Background(), again, Config{Dialect: DialectSQLite, FS: schema.FS}); err != nil {
		t.Fatalf("expected idempotent run, got %v", err)
	}
}
