package inventory

import (
	"github.com/google/uuid"
)

// DefaultPriority is the score new requests and items carry until the first recalculation.
const DefaultPriority = 0.5

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
