package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds one atomic transfer unit, lock waits included.
	DefaultTransactionTimeout = 10 * time.Second

	// MaxTrackingCodeAttempts is how many tracking codes a transfer tries before aborting.
	MaxTrackingCodeAttempts = 5

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessing is the stored value of a key whose first request is still in flight.
	IdempotencyProcessing = "processing"

	// LookupCacheTTL is how long a looked up transaction stays cached.
	// Records are immutable so this only bounds memory.
	LookupCacheTTL = time.Hour
)
