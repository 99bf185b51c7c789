package renderer

import (
	"errors"
	"fmt"
)

// ErrStaleMatrices is returned when a pass is handed a matrix cache that was
// not computed for the frame being rendered.
var ErrStaleMatrices = errors.New("object matrices not computed for this frame")

// Resource kinds reported by ResourceResolutionError.
const (
	KindMesh     = "mesh"
	KindTexture  = "texture"
	KindMatrices = "matrices"
	KindInput    = "input"
)

// ResourceResolutionError reports a reference that could not be resolved
// while assembling a pass. The frame is aborted.
type ResourceResolutionError struct {
	Pass      string
	Kind      string
	Reference string
	Err       error
}

func (e *ResourceResolutionError) Error() string {
	msg := fmt.Sprintf("pass %s: unresolved %s %q", e.Pass, e.Kind, e.Reference)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResourceResolutionError) Unwrap() error { return e.Err }

// ConfigurationError reports a pipeline that cannot be built: a program
// uniform with no binding, a duplicate target, a shader that fails to
// compile.
type ConfigurationError struct {
	Component string
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	msg := e.Component + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
