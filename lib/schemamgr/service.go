package schemamgr

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"time"
)

var Logger = logger.GetLogger("schemamgr")

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config controls schema replication.
type Config struct {
	// MaxPutRetries is the number of times a schema is sent before Put gives up
	MaxPutRetries int
	// RetryPause is the pause between two sends
	RetryPause time.Duration
}

// DefaultConfig returns 100 attempts with a pause of one second.
func DefaultConfig() Config {
	return Config{
		MaxPutRetries: 100,
		RetryPause:    time.Second,
	}
}

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

// call is a network round trip shared by all callers asking for the same id
type call struct {
	done   chan struct{}
	schema *compact.Schema
	err    error
}

// Service is the client side schema registry. It implements
// compact.SchemaService.
//
// A schema is in the local cache only after it was replicated to every
// member (Put), fetched from the cluster (Get) or learned from inbound data
// (PutLocal). Concurrent requests for the same id share one round trip.
type Service struct {
	invoker Invoker
	config  Config
	schemas *xsync.MapOf[int64, *compact.Schema]
	puts    *xsync.MapOf[int64, *call]
	fetches *xsync.MapOf[int64, *call]
}

// NewService creates a schema service sending its requests through invoker
func NewService(invoker Invoker, config Config) *Service {
	if config.MaxPutRetries < 0 {
		config.MaxPutRetries = 0
	}
	return &Service{
		invoker: invoker,
		config:  config,
		schemas: xsync.NewMapOf[int64, *compact.Schema](),
		puts:    xsync.NewMapOf[int64, *call](),
		fetches: xsync.NewMapOf[int64, *call](),
	}
}

var _ compact.SchemaService = (*Service)(nil)

// --------------------------------------------------------------------------
// Interface Methods (docu see compact.SchemaService)
// --------------------------------------------------------------------------

func (s *Service) Get(ctx context.Context, id int64) (*compact.Schema, error) {
	if schema, ok := s.schemas.Load(id); ok {
		cacheHits.Inc()
		return schema, nil
	}
	cacheMisses.Inc()
	Logger.Debugf("schema %d not known locally, fetching it from the cluster", id)

	return s.share(ctx, s.fetches, id, func(ctx context.Context) (*compact.Schema, error) {
		return s.fetch(ctx, id)
	})
}

func (s *Service) GetLocal(id int64) (*compact.Schema, bool) {
	return s.schemas.Load(id)
}

func (s *Service) Put(ctx context.Context, schema *compact.Schema) error {
	id := schema.ID()
	if existing, ok := s.schemas.Load(id); ok {
		if !existing.Equal(schema) {
			return collisionError(existing, schema)
		}
		Logger.Debugf("schema %d already exists locally", id)
		return nil
	}

	replicated, err := s.share(ctx, s.puts, id, func(ctx context.Context) (*compact.Schema, error) {
		return s.replicate(ctx, schema)
	})
	if err != nil {
		return err
	}

	// Another caller may have replicated a different schema under the same id
	if !replicated.Equal(schema) {
		return collisionError(replicated, schema)
	}
	return nil
}

func (s *Service) PutLocal(schema *compact.Schema) error {
	_, err := s.putIfAbsent(schema)
	return err
}

// --------------------------------------------------------------------------
// Cluster Methods
// --------------------------------------------------------------------------

// SendAllSchemas sends all locally known schemas to the cluster in one
// request. It is used after (re)connecting to a cluster that may have lost
// them. Nothing is sent if no schema is known.
func (s *Service) SendAllSchemas(ctx context.Context) error {
	schemas := s.Schemas()
	if len(schemas) == 0 {
		Logger.Debugf("there are no schemas to send to the cluster")
		return nil
	}

	Logger.Infof("sending %d schemas to the cluster", len(schemas))
	if err := s.invoker.SendAllSchemas(ctx, schemas); err != nil {
		return fmt.Errorf("schemamgr: failed to send all schemas: %w", err)
	}
	return nil
}

// HasAnySchemas reports whether at least one schema is known locally
func (s *Service) HasAnySchemas() bool {
	return s.schemas.Size() > 0
}

// Schemas returns all locally known schemas
func (s *Service) Schemas() []*compact.Schema {
	schemas := make([]*compact.Schema, 0, s.schemas.Size())
	s.schemas.Range(func(_ int64, schema *compact.Schema) bool {
		schemas = append(schemas, schema)
		return true
	})
	return schemas
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// share runs fn once per id for all concurrent callers. fn runs detached from
// the cancellation of the caller that started it, a caller whose ctx is done
// stops waiting while the round trip completes for the others.
func (s *Service) share(ctx context.Context, calls *xsync.MapOf[int64, *call], id int64, fn func(context.Context) (*compact.Schema, error)) (*compact.Schema, error) {
	c, loaded := calls.LoadOrCompute(id, func() *call {
		return &call{done: make(chan struct{})}
	})
	if !loaded {
		go func() {
			c.schema, c.err = fn(context.WithoutCancel(ctx))
			calls.Delete(id)
			close(c.done)
		}()
	} else {
		sharedCalls.Inc()
	}

	select {
	case <-c.done:
		return c.schema, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch asks the cluster for the schema and caches the answer
func (s *Service) fetch(ctx context.Context, id int64) (*compact.Schema, error) {
	fetches.Inc()
	schema, err := s.invoker.FetchSchema(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("schemamgr: failed to fetch schema %d: %w", id, err)
	}
	if schema == nil {
		Logger.Infof("did not find schema %d on the cluster", id)
		return nil, compact.NewError(compact.ErrCSchemaNotFound, fmt.Sprintf("the schema can not be found with id %d", id))
	}
	if schema.ID() != id {
		return nil, compact.NewError(compact.ErrCMalformed, fmt.Sprintf("cluster answered fetch of schema %d with schema %d", id, schema.ID()))
	}
	Logger.Infof("found schema %d (%s) on the cluster", id, schema.TypeName())
	return s.putIfAbsent(schema)
}

// replicate sends the schema until every current member holds it, then caches it
func (s *Service) replicate(ctx context.Context, schema *compact.Schema) (*compact.Schema, error) {
	id := schema.ID()
	for attempt := 1; attempt <= s.config.MaxPutRetries; attempt++ {
		replications.Inc()
		replicated, err := s.invoker.SendSchema(ctx, schema)
		if err != nil {
			return nil, fmt.Errorf("schemamgr: failed to send schema %d: %w", id, err)
		}
		members, err := s.invoker.Members(ctx)
		if err != nil {
			return nil, fmt.Errorf("schemamgr: failed to list members: %w", err)
		}

		missing := missingMembers(replicated, members)
		if missing == 0 {
			Logger.Debugf("schema %d replicated to all %d members", id, len(members))
			return s.putIfAbsent(schema)
		}

		replicationRetries.Inc()
		Logger.Warningf("schema %d is not replicated to %d of %d members yet (attempt %d/%d)",
			id, missing, len(members), attempt, s.config.MaxPutRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.config.RetryPause):
		}
	}

	replicationFailures.Inc()
	return nil, &ReplicationError{Schema: schema, Attempts: s.config.MaxPutRetries}
}

// putIfAbsent caches the schema and returns the cached one. A different
// schema under the same id is a collision.
func (s *Service) putIfAbsent(schema *compact.Schema) (*compact.Schema, error) {
	actual, loaded := s.schemas.LoadOrStore(schema.ID(), schema)
	if !loaded {
		Logger.Debugf("added schema %d (%s) locally", schema.ID(), schema.TypeName())
		return schema, nil
	}
	if !actual.Equal(schema) {
		return nil, collisionError(actual, schema)
	}
	return actual, nil
}

// missingMembers counts the members that are not in replicated
func missingMembers(replicated, members []uuid.UUID) int {
	have := make(map[uuid.UUID]struct{}, len(replicated))
	for _, id := range replicated {
		have[id] = struct{}{}
	}
	missing := 0
	for _, id := range members {
		if _, ok := have[id]; !ok {
			missing++
		}
	}
	return missing
}

func collisionError(existing, schema *compact.Schema) error {
	collisions.Inc()
	Logger.Errorf("schema id collision for id %d: %s vs %s", schema.ID(), existing, schema)
	return compact.NewError(compact.ErrCSchemaCollision,
		fmt.Sprintf("schema with id %d already exists. existing schema: %s new schema: %s", schema.ID(), existing, schema))
}
