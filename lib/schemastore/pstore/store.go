package pstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/cockroachdb/pebble"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("schemastore")

// keyPrefix separates schema keys from anything else stored in the same db
const keyPrefix = 's'

// NewPebbleStore opens (or creates) a persistent schema store in dir
func NewPebbleStore(dir string) (schemastore.ISchemaStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open schema store in %s: %w", dir, err)
	}

	s := &pebbleStore{db: db}
	schemas, err := s.List()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.count = len(schemas)
	Logger.Infof("opened schema store in %s with %d schemas", dir, s.count)

	return s, nil
}

type pebbleStore struct {
	db *pebble.DB
	// mu serializes Put so the check for an existing schema and the write are atomic
	mu    sync.Mutex
	count int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see schemastore.ISchemaStore)
// --------------------------------------------------------------------------

func (p *pebbleStore) Put(schema *compact.Schema) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, ok, err := p.Get(schema.ID())
	if err != nil {
		return false, err
	}
	if ok {
		if !existing.Equal(schema) {
			return false, schemastore.CollisionError(existing, schema)
		}
		return false, nil
	}

	if err := p.db.Set(encodeKey(schema.ID()), compact.EncodeSchemas(schema), pebble.Sync); err != nil {
		return false, fmt.Errorf("failed to store schema %d: %w", schema.ID(), err)
	}
	p.count++
	return true, nil
}

func (p *pebbleStore) Get(id int64) (*compact.Schema, bool, error) {
	value, closer, err := p.db.Get(encodeKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read schema %d: %w", id, err)
	}
	defer closer.Close()

	schema, err := decodeValue(value)
	if err != nil {
		return nil, false, fmt.Errorf("stored schema %d is corrupt: %w", id, err)
	}
	return schema, true, nil
}

func (p *pebbleStore) List() ([]*compact.Schema, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{keyPrefix},
		UpperBound: []byte{keyPrefix + 1},
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var schemas []*compact.Schema
	for iter.First(); iter.Valid(); iter.Next() {
		schema, err := decodeValue(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("stored schema %x is corrupt: %w", iter.Key(), err)
		}
		schemas = append(schemas, schema)
	}
	return schemas, iter.Error()
}

func (p *pebbleStore) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *pebbleStore) Close() error {
	return p.db.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// encodeKey builds the key of a schema id. The sign bit is flipped so the
// byte order of keys matches the numeric order of ids.
func encodeKey(id int64) []byte {
	key := make([]byte, 9)
	key[0] = keyPrefix
	binary.BigEndian.PutUint64(key[1:], uint64(id)^(1<<63))
	return key
}

// decodeValue decodes a stored schema. The value is copied by the decoder,
// so it may be released afterwards.
func decodeValue(value []byte) (*compact.Schema, error) {
	schemas, err := compact.DecodeSchemas(value)
	if err != nil {
		return nil, err
	}
	if len(schemas) != 1 {
		return nil, fmt.Errorf("expected one schema, got %d", len(schemas))
	}
	return schemas[0], nil
}
