package vmem

import "errors"

var (
	// ErrMappingFailed is returned when MapAddressRange cannot satisfy its constraints.
	ErrMappingFailed = errors.New("vmem: mapping failed")

	// ErrNoMapping is returned by a translation lookup that finds no covering page.
	ErrNoMapping = errors.New("vmem: no mapping")

	// ErrNoBank is returned when a requested bank has not been registered with the regime.
	ErrNoBank = errors.New("vmem: unknown bank")
)
