package meta

import (
	"reflect"
)

// EndpointMetadata describes a declared endpoint.
// This type is internal so it cannot be instantiated by external packages,
// which allows us to seal the Definition interface.
type EndpointMetadata struct {
	Method string
	// Path is the static path, or empty when the path is computed.
	Path     string
	Args     reflect.Type
	Body     reflect.Type
	Schema   string
	Computed []string
}
