package rowsource

import (
	"errors"
	"reflect"
	"sync"

	"table-reconciler/core/database"

	"gorm.io/gorm"
)

// Pool keeps one open connection per named data source and hands out
// Sources over them. A connection replaced by a newer config of the same
// name stays open until every caller that acquired it has released it.
type Pool struct {
	mu      sync.Mutex
	conns   map[string]*pooledConn
	retired map[*pooledConn]struct{}
	cache   *SchemaCache
	connect func(database.Config) (*gorm.DB, error)
}

type pooledConn struct {
	cfg  database.Config
	db   *gorm.DB
	refs int
}

// NewPool creates an empty Pool sharing cache across its sources.
func NewPool(cache *SchemaCache) *Pool {
	return &Pool{
		conns:   make(map[string]*pooledConn),
		retired: make(map[*pooledConn]struct{}),
		cache:   cache,
		connect: database.Connect,
	}
}

// Acquire returns a Source for name, connecting with cfg on first use or
// when the config of name changed. The returned release func must be called
// once the Source is no longer used; calling it more than once is harmless.
func (p *Pool) Acquire(name string, cfg database.Config) (*SQLSource, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc, ok := p.conns[name]
	if ok && !reflect.DeepEqual(pc.cfg, cfg) {
		p.retire(name, pc)
		ok = false
	}
	if !ok {
		db, err := p.connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		pc = &pooledConn{cfg: cfg, db: db}
		p.conns[name] = pc
	}

	pc.refs++
	var once sync.Once
	release := func() {
		once.Do(func() { p.release(pc) })
	}
	return NewSQLSource(name, pc.db, p.cache), release, nil
}

// retire drops pc from the named connections. It is closed right away when
// unused, otherwise by its last release. Callers hold p.mu.
func (p *Pool) retire(name string, pc *pooledConn) {
	delete(p.conns, name)
	if p.cache != nil {
		p.cache.Clear()
	}
	if pc.refs == 0 {
		_ = database.Close(pc.db)
		return
	}
	p.retired[pc] = struct{}{}
}

func (p *Pool) release(pc *pooledConn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc.refs--
	if pc.refs > 0 {
		return
	}
	if _, ok := p.retired[pc]; ok {
		delete(p.retired, pc)
		_ = database.Close(pc.db)
	}
}

// Len returns the number of current connections, not counting replaced ones
// still in use.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// Close closes every connection, including replaced ones still in use.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, pc := range p.conns {
		if err := database.Close(pc.db); err != nil {
			errs = append(errs, err)
		}
		delete(p.conns, name)
	}
	for pc := range p.retired {
		if err := database.Close(pc.db); err != nil {
			errs = append(errs, err)
		}
		delete(p.retired, pc)
	}
	return errors.Join(errs...)
}
