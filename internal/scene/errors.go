package scene

import "errors"

// ErrResourceCreation marks failures to create, compile, link or upload a GPU
// object. The entity that needed it stays dirty and unbound.
var ErrResourceCreation = errors.New("renderer resource creation failed")
