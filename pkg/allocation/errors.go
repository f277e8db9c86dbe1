package allocation

import "errors"

// Error taxonomy for the rebalancing engine. Handlers map these onto HTTP
// status codes; everything unmatched is treated as an internal error.
var (
	// ErrValidation marks malformed or out-of-range input (bad bucket type,
	// negative balance, unknown bank/account/allocation id).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks an ownership violation: the target account or
	// allocation exists but does not belong to the requesting user.
	ErrUnauthorized = errors.New("resource not owned by user")

	// ErrPolicyViolation marks a bucket request that is not permitted for the
	// current account-count transition.
	ErrPolicyViolation = errors.New("allocation policy violation")

	// ErrConsistency marks a missing expected allocation row or a storage
	// failure mid-transaction. The whole operation is rolled back and the
	// caller may retry.
	ErrConsistency = errors.New("allocation state inconsistent")
)
