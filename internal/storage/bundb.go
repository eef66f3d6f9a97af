package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"diskmeta/internal/common"
	"diskmeta/internal/util"
)

// BunDB wraps a Bun database instance for type-safe queries.
type BunDB struct {
	*bun.DB
}

// NewBunDB wraps an existing *sql.DB with Bun's type-safe query builder.
func NewBunDB(sqlDB *sql.DB) *BunDB {
	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	return &BunDB{DB: bunDB}
}

// GetSchemaInfo retrieves a schema_info value by key.
func (db *BunDB) GetSchemaInfo(ctx context.Context, key string) (string, error) {
	var info SchemaInfoModel
	err := db.NewSelect().
		Model(&info).
		Where("key = ?", key).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.Value, nil
}

// UpsertNode inserts or replaces a node row in table.
func (db *BunDB) UpsertNode(ctx context.Context, table string, node *NodeModel) error {
	_, err := db.NewInsert().
		Model(node).
		ModelTableExpr("?", bun.Ident(table)).
		On("CONFLICT (id) DO UPDATE").
		Set("type = EXCLUDED.type").
		Set("parent_id = EXCLUDED.parent_id").
		Set("name = EXCLUDED.name").
		Set("path = EXCLUDED.path").
		Exec(ctx)
	return err
}

// SelectNodes returns the rows of table whose column equals value, ordered
// by name. limit <= 0 means no limit.
func (db *BunDB) SelectNodes(ctx context.Context, table, col, value string, limit int) ([]NodeModel, error) {
	var nodes []NodeModel
	q := db.NewSelect().
		Model(&nodes).
		ModelTableExpr("? AS n", bun.Ident(table)).
		Where("? = ?", bun.Ident(col), value).
		OrderExpr("n.name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return nodes, nil
}

// SQLConfig configures the SQLite collection backend.
type SQLConfig struct {
	Path        string // database file
	Collection  string // table name, defaults to DefaultCollection
	BusyTimeout int    // milliseconds, 0 = default
}

// SQLCollection is a Collection stored in one table of a SQLite database
// opened through libsql.
type SQLCollection struct {
	path   string
	table  string
	db     *sql.DB
	bunDB  *BunDB
	logger logrus.FieldLogger
}

// OpenSQLCollection opens (creating if needed) the database at cfg.Path and
// ensures the collection table exists. Failures to reach the database are
// reported as common.ErrStoreUnavailable.
func OpenSQLCollection(ctx context.Context, cfg SQLConfig, logger logrus.FieldLogger) (*SQLCollection, error) {
	table := cfg.Collection
	if table == "" {
		table = DefaultCollection
	}
	if !ValidCollectionName(table) {
		return nil, fmt.Errorf("invalid collection name %q", table)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: no database path configured", common.ErrStoreUnavailable)
	}
	if logger == nil {
		logger = discardLogger()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("libsql", BuildDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStoreUnavailable, cfg.Path, err)
	}
	// PRAGMAs are per connection and all calls are sequential
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", common.ErrStoreUnavailable, cfg.Path, err)
	}

	// Apply PRAGMAs explicitly, libsql ignores them in the DSN.
	if err := applyPragmas(ctx, db, GetBusyTimeout(cfg.BusyTimeout)); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	// Another process may be creating the same schema
	err = util.Retry(ctx, func() error {
		return execStatements(ctx, db, fmt.Sprintf(collectionSchema, table))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := execStatements(ctx, db, initSchemaInfo, SchemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema info: %w", err)
	}

	logger.WithFields(logrus.Fields{"path": cfg.Path, "collection": table}).Debug("Opened sqlite collection")

	return &SQLCollection{
		path:   cfg.Path,
		table:  table,
		db:     db,
		bunDB:  NewBunDB(db),
		logger: logger,
	}, nil
}

// Path returns the database file path
func (c *SQLCollection) Path() string {
	return c.path
}

// BunDB returns the Bun query builder bound to the database.
func (c *SQLCollection) BunDB() *BunDB {
	return c.bunDB
}

// Save upserts rec. Uses retry logic for transient "database is locked"
// errors when several CLI processes share the database file.
func (c *SQLCollection) Save(ctx context.Context, rec *Record) (string, error) {
	if rec.ID == "" {
		rec.ID = newRecordID()
	}
	model := NodeModelFromRecord(rec)
	id, err := util.RetryWithResult(ctx, func() (string, error) {
		if err := c.bunDB.UpsertNode(ctx, c.table, model); err != nil {
			return "", err
		}
		return model.ID, nil
	}, util.DatabaseRetryOptions(ctx)...)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", rec.ID, err)
	}
	return id, nil
}

// Find returns every record matching filter.
func (c *SQLCollection) Find(ctx context.Context, filter Filter) ([]*Record, error) {
	return c.find(ctx, filter, 0)
}

// FindOne returns the first record matching filter, or nil.
func (c *SQLCollection) FindOne(ctx context.Context, filter Filter) (*Record, error) {
	recs, err := c.find(ctx, filter, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (c *SQLCollection) find(ctx context.Context, filter Filter, limit int) ([]*Record, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	models, err := util.RetryWithResult(ctx, func() ([]NodeModel, error) {
		return c.bunDB.SelectNodes(ctx, c.table, column(filter.Field), filter.Value, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", filter, err)
	}
	recs := make([]*Record, 0, len(models))
	for i := range models {
		recs = append(recs, models[i].ToRecord())
	}
	return recs, nil
}

// Close closes the database connection
func (c *SQLCollection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
