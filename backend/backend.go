package backend

import (
	"errors"

	"github.com/gogpu/gpath/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot create a device on this system.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrInvalidSize is returned for non-positive target dimensions.
	ErrInvalidSize = errors.New("backend: invalid target size")
)

// Backend name constants.
const (
	// BackendSoft is the name of the software reference device.
	BackendSoft = "soft"
	// BackendWGPU is the name of the wgpu device.
	BackendWGPU = "wgpu"
)

// Factory creates a device rendering into a new width x height target.
// Factories return an error wrapping ErrBackendNotAvailable when the
// backend cannot run on this system.
type Factory func(width, height int) (render.Device, error)
