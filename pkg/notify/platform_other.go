//go:build !linux && !darwin

package notify

import "fmt"

// Platform reports that no desktop backend exists on this platform.
func Platform() (Backend, error) {
	return nil, fmt.Errorf("desktop notifications are not supported on this platform")
}
