package schemamgr

import "github.com/VictoriaMetrics/metrics"

// Counters of all schema services of the process. They are exposed through
// metrics.WritePrometheus (see the admin endpoint of the member server).
var (
	cacheHits           = metrics.NewCounter(`dgrid_schemamgr_cache_hits_total`)
	cacheMisses         = metrics.NewCounter(`dgrid_schemamgr_cache_misses_total`)
	fetches             = metrics.NewCounter(`dgrid_schemamgr_fetches_total`)
	replications        = metrics.NewCounter(`dgrid_schemamgr_replications_total`)
	replicationRetries  = metrics.NewCounter(`dgrid_schemamgr_replication_retries_total`)
	replicationFailures = metrics.NewCounter(`dgrid_schemamgr_replication_failures_total`)
	sharedCalls         = metrics.NewCounter(`dgrid_schemamgr_shared_calls_total`)
	collisions          = metrics.NewCounter(`dgrid_schemamgr_collisions_total`)
)
