package platform

import "log"

// BestEffort runs a cleanup operation whose failure must not affect the
// caller. The error is logged at debug level and dropped.
func BestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("[DEBUG] best-effort %s failed: %v", op, err)
	}
}
