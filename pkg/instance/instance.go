package instance

import "github.com/angelmondragon/stockroom-backend/pkg/env"

// GetID returns the process instance identifier used in logs and lock owners.
// STOCKROOM_WORKER_ID wins over the platform DYNO name.
func GetID() string {
	return env.FirstOf("local", "STOCKROOM_WORKER_ID", "DYNO")
}
