package stats

// Reasons recorded by RaidzMapErrorCounter.
const (
	ErrorVdevNotFound   = "vdevNotFound"
	ErrorInvalidRequest = "invalidRequest"
	ErrorInvalidVdev    = "invalidVdev"
	ErrorInvariant      = "invariant"
	ErrorASizeMismatch  = "asizeMismatch"
)
