package httpapi

import "fmt"

// errUnavailable reports that a backend probed by a readiness check is
// currently down.
func errUnavailable(name string) error {
	return fmt.Errorf("%s is unavailable", name)
}
