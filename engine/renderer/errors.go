package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// SurfaceErrorKind classifies a presentation surface fault. The frame
// controller keys its recovery policy off this value: Lost and Outdated
// reconfigure the surface and drop the frame, Timeout skips the present,
// OutOfMemory is fatal.
type SurfaceErrorKind int

const (
	// SurfaceLost means the surface's backing resources are gone and it
	// must be reconfigured before the next frame.
	SurfaceLost SurfaceErrorKind = iota

	// SurfaceOutdated means the surface no longer matches the window
	// (typically mid-resize) and must be reconfigured.
	SurfaceOutdated

	// SurfaceTimeout means acquiring the next surface image timed out.
	// Transient; the frame's present is skipped.
	SurfaceTimeout

	// SurfaceOutOfMemory means the driver could not allocate surface
	// memory. Not recoverable.
	SurfaceOutOfMemory
)

// String returns the name of the surface error kind.
func (k SurfaceErrorKind) String() string {
	switch k {
	case SurfaceLost:
		return "lost"
	case SurfaceOutdated:
		return "outdated"
	case SurfaceTimeout:
		return "timeout"
	case SurfaceOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// SurfaceError is a presentation surface fault reported by a backend.
type SurfaceError struct {
	Kind SurfaceErrorKind
	Err  error
}

func (e *SurfaceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("renderer: surface %s", e.Kind)
	}
	return fmt.Sprintf("renderer: surface %s: %v", e.Kind, e.Err)
}

func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the frame controller can continue rendering
// after this fault.
func (e *SurfaceError) Recoverable() bool {
	return e.Kind != SurfaceOutOfMemory
}

// FrameStateError reports a frame lifecycle contract violation, such as
// queueing a draw while no frame is open. These indicate producer bugs,
// not GPU conditions, and never corrupt engine state.
type FrameStateError struct {
	Op    string
	State string
}

func (e *FrameStateError) Error() string {
	return fmt.Sprintf("renderer: %s called in frame state %s", e.Op, e.State)
}

// ResourceCreationError reports a failed GPU resource creation, carrying
// enough context to tell validation failures from driver errors.
type ResourceCreationError struct {
	Resource string
	Err      error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("renderer: failed to create %s: %v", e.Resource, e.Err)
}

func (e *ResourceCreationError) Unwrap() error {
	return e.Err
}

// ErrTextureNotFound is returned when a batch references a texture handle
// the backend does not know.
var ErrTextureNotFound = errors.New("renderer: texture handle not registered")

// classifySurfaceError maps a raw backend error to a typed *SurfaceError.
// wgpu-native reports surface faults as error strings rather than status
// enums, so classification is substring matching on the driver message.
// Unrecognized errors default to SurfaceLost: reconfigure-and-drop is the
// safest recovery for an unknown acquire failure.
func classifySurfaceError(err error) *SurfaceError {
	var se *SurfaceError
	if errors.As(err, &se) {
		return se
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return &SurfaceError{Kind: SurfaceTimeout, Err: err}
	case strings.Contains(msg, "outdated"):
		return &SurfaceError{Kind: SurfaceOutdated, Err: err}
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory") || strings.Contains(msg, "oom"):
		return &SurfaceError{Kind: SurfaceOutOfMemory, Err: err}
	default:
		return &SurfaceError{Kind: SurfaceLost, Err: err}
	}
}
