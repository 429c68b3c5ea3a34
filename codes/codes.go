package codes

const (
	// Nil indicates an unknown error. Should you encounter a Nil status, fret not! It will be reported to the server admin.
	Nil = iota
	// NotFound indicates that the requested unit does not exist.
	NotFound
	// BadRequest indicates that the request could not be decoded.
	BadRequest
	// InvalidUnit indicates that a unit payload is missing or fails validation.
	InvalidUnit
	// UnknownUnit indicates that a mutation targeted a unit that does not exist.
	UnknownUnit
)
