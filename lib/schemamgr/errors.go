package schemamgr

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
)

// ReplicationError is returned by Put when the schema could not be
// replicated to all members within the configured number of attempts.
type ReplicationError struct {
	Schema   *compact.Schema
	Attempts int
}

func (e *ReplicationError) Error() string {
	return fmt.Sprintf("the schema %s cannot be replicated in the cluster after %d attempts. "+
		"The client might be connected to the two halves of a cluster that experiences a split brain; "+
		"using the schema now could lose data. Replication may succeed once the cluster is healed",
		e.Schema.TypeName(), e.Attempts)
}

// Is matches compact.ErrSchemaNotReplicated: the schema must not be used for writing.
func (e *ReplicationError) Is(target error) bool {
	return errors.Is(compact.ErrSchemaNotReplicated, target)
}
