package rowsource

import (
	"context"
	"sync"
	"time"

	"table-reconciler/core/database"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// TableSchema is the cached metadata of one table.
type TableSchema struct {
	// Columns in ordinal order.
	Columns []database.ColumnInfo

	// PrimaryKeys in key order.
	PrimaryKeys []string

	// Built is the timestamp when this schema was loaded.
	Built time.Time
}

// ColumnNames returns the column names in ordinal order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// LoadSchema reads the metadata of table from db.
func LoadSchema(ctx context.Context, db *gorm.DB, table string) (*TableSchema, error) {
	cols, err := database.GetTableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	pks, err := database.GetPrimaryKeys(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return &TableSchema{Columns: cols, PrimaryKeys: pks, Built: time.Now()}, nil
}

// SchemaCache holds table schemas for a TTL. Concurrent misses on the same
// key share one load.
type SchemaCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	schemas map[string]*TableSchema
	sf      singleflight.Group
	now     func() time.Time
}

// NewSchemaCache creates a cache. A zero ttl disables caching but still
// collapses concurrent loads.
func NewSchemaCache(ttl time.Duration) *SchemaCache {
	return &SchemaCache{
		ttl:     ttl,
		schemas: make(map[string]*TableSchema),
		now:     time.Now,
	}
}

func (c *SchemaCache) fresh(s *TableSchema) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(s.Built) <= c.ttl
}

// Get returns the cached schema for key, or loads and stores it.
func (c *SchemaCache) Get(ctx context.Context, key string, load func(context.Context) (*TableSchema, error)) (*TableSchema, error) {
	// Fast path: cached and fresh
	c.mu.RLock()
	schema, exists := c.schemas[key]
	c.mu.RUnlock()
	if exists && c.fresh(schema) {
		return schema, nil
	}

	// Slow path: load once per key
	result, err, _ := c.sf.Do(key, func() (any, error) {
		c.mu.RLock()
		schema, exists := c.schemas[key]
		c.mu.RUnlock()
		if exists && c.fresh(schema) {
			return schema, nil
		}

		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		loaded.Built = c.now()

		c.mu.Lock()
		c.schemas[key] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*TableSchema), nil
}

// Invalidate drops the schema stored under key.
func (c *SchemaCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.schemas, key)
	c.mu.Unlock()
}

// Clear drops every cached schema.
func (c *SchemaCache) Clear() {
	c.mu.Lock()
	c.schemas = make(map[string]*TableSchema)
	c.mu.Unlock()
}
