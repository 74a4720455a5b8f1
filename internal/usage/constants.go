package usage

import "time"

const (
	// BatchFlushThreshold is the number of entries that triggers an immediate flush.
	BatchFlushThreshold = 100

	// CleanupInterval is how often retention cleanup runs.
	CleanupInterval = 1 * time.Hour

	tableName      = "upstream_calls"
	collectionName = "upstream_calls"
)
