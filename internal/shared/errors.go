package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upstream errors
	ErrUpstreamUnavailable = fmt.Errorf("upstream unavailable")
	ErrMalformedRecord     = fmt.Errorf("malformed upstream record")
	ErrPlaylistNotFound    = fmt.Errorf("playlist not found")

	// Cache errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")
	ErrNoMigrations     = fmt.Errorf("no migrations applied")

	// Input validation errors
	ErrInvalidReference = fmt.Errorf("invalid playlist reference")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)
