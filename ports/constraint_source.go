package ports

import (
	"goportfolio/domain/constraint"
)

// ConstraintSource yields immutable snapshots of a constraint system. The
// geometry engine compares snapshot hashes to detect staleness.
type ConstraintSource interface {
	System() constraint.System
}
