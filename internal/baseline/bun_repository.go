package baseline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// entryNamespace matches the namespace the cache decorator derives from the
// Entry type name.
const entryNamespace = "entry"

// NewEntryRepository creates the generic repository for entries, keyed by
// fingerprint.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord:          func() *Entry { return &Entry{} },
		GetID:              func(entry *Entry) uuid.UUID { return entry.ID },
		SetID:              func(entry *Entry, id uuid.UUID) { entry.ID = id },
		GetIdentifier:      func() string { return "fingerprint" },
		GetIdentifierValue: func(entry *Entry) string { return entry.Fingerprint },
	})
}

// BunRepository stores entries with bun, optionally behind a read cache.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Entry]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunRepository creates a repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a repository whose reads go through
// cacheService. Writes invalidate the cached entries.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	return NewScopedBunRepositoryWithCache(db, "", cacheService, serializer)
}

// NewScopedBunRepositoryWithCache is NewBunRepositoryWithCache for a cache
// shared between databases: scope, usually the database path, becomes part
// of every key so baselines of different sites never mix.
func NewScopedBunRepositoryWithCache(db *bun.DB, scope string, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewEntryRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		if scope != "" {
			serializer = scopedSerializer{scope: scope, next: serializer}
		}
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	return &BunRepository{db: db, repo: base, cacheService: svc, cachePrefix: cachePrefix(svc)}
}

// scopedSerializer keeps the namespace first so prefix invalidation still
// reaches scoped keys.
type scopedSerializer struct {
	scope string
	next  cache.KeySerializer
}

func (s scopedSerializer) SerializeKey(method string, args ...any) string {
	return s.next.SerializeKey(method, append([]any{s.scope}, args...)...)
}

func cachePrefix(svc cache.CacheService) string {
	if svc == nil {
		return ""
	}
	return entryNamespace + cache.KeySeparator
}

// OpenSQLite opens (creating when needed) the baseline database at path.
func OpenSQLite(ctx context.Context, path string) (*bun.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("baseline: database path is required")
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + path + "?cache=shared&_busy_timeout=5000"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("baseline: open %s: %w", path, err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the entries table.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("baseline: create table: %w", err)
	}
	return nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.path ASC, ?TableAlias.rule ASC, ?TableAlias.message ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("baseline: list: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	record, err := r.repo.GetByIdentifier(ctx, strings.TrimSpace(fingerprint))
	if err != nil {
		return nil, mapRepositoryError(err, fingerprint)
	}
	return record, nil
}

func (r *BunRepository) Add(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry == nil || strings.TrimSpace(entry.Fingerprint) == "" {
		return nil, fmt.Errorf("baseline: entry fingerprint is required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	record, err := r.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("baseline: add %s: %w", entry.Fingerprint, err)
	}
	if err := r.invalidate(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// Replace deletes every entry and inserts entries in one transaction.
func (r *BunRepository) Replace(ctx context.Context, entries []*Entry) error {
	rows := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		rows = append(rows, entry)
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Entry)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("baseline: replace: %w", err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) Clear(ctx context.Context) error {
	if _, err := r.db.NewDelete().Model((*Entry)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("baseline: clear: %w", err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	if err := r.cacheService.DeleteByPrefix(ctx, r.cachePrefix); err != nil {
		return fmt.Errorf("baseline: invalidate cache: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, fingerprint string) error {
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, fingerprint)
	}
	return fmt.Errorf("baseline: get %s: %w", fingerprint, err)
}
