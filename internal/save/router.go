package save

import (
	"fmt"

	"github.com/opforge/opforge/internal/model"
)

// EntityState exposes the two independent flags the Save routing table reads
// at invocation time.
type EntityState interface {
	IsNew() bool
	IsDeleted() bool
}

// Route resolves the routing table for one Save call. Exactly one branch
// applies; invoke is false only for the new-and-deleted branch, where no
// member runs and the result is absent.
//
//	isNew  isDeleted  action
//	true   false      Insert
//	true   true       none (absent result)
//	false  true       Delete
//	false  false      Update
func Route(isNew, isDeleted bool) (kind model.OperationKind, invoke bool) {
	switch {
	case isNew && !isDeleted:
		return model.KindInsert, true
	case isNew && isDeleted:
		return "", false
	case !isNew && isDeleted:
		return model.KindDelete, true
	default:
		return model.KindUpdate, true
	}
}

// RoutingError is returned when the routing table selects a member kind the
// save group has no descriptor for.
type RoutingError struct {
	Save    string
	Missing model.OperationKind
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s: no configured %s", e.Save, e.Missing)
}
