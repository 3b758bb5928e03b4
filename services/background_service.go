package services

import "log"

// DispatchBackground runs fn on its own goroutine and logs any error. Call
// sites using it are explicitly fire-and-forget: the triggering request does
// not wait and never sees the failure.
func DispatchBackground(name string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			log.Printf("🔥 Background task %s failed: %v", name, err)
		}
	}()
}
