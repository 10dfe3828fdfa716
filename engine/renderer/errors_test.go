package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySurfaceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SurfaceErrorKind
	}{
		{name: "timeout", err: errors.New("Surface timed out"), want: SurfaceTimeout},
		{name: "timeout short", err: errors.New("acquire timeout"), want: SurfaceTimeout},
		{name: "outdated", err: errors.New("Surface is Outdated, needs reconfiguration"), want: SurfaceOutdated},
		{name: "out of memory", err: errors.New("ERROR_OUT_OF_MEMORY on acquire"), want: SurfaceOutOfMemory},
		{name: "lost", err: errors.New("Surface was Lost"), want: SurfaceLost},
		{name: "unknown defaults to lost", err: errors.New("something unexpected"), want: SurfaceLost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := classifySurfaceError(tt.err)
			require.NotNil(t, se)
			assert.Equal(t, tt.want, se.Kind)
			assert.ErrorIs(t, se, tt.err)
		})
	}
}

func TestClassifySurfaceErrorPassthrough(t *testing.T) {
	orig := &SurfaceError{Kind: SurfaceTimeout, Err: errors.New("inner")}
	wrapped := fmt.Errorf("frame: %w", orig)

	se := classifySurfaceError(wrapped)
	assert.Same(t, orig, se)
}

func TestSurfaceErrorRecoverable(t *testing.T) {
	assert.True(t, (&SurfaceError{Kind: SurfaceLost}).Recoverable())
	assert.True(t, (&SurfaceError{Kind: SurfaceOutdated}).Recoverable())
	assert.True(t, (&SurfaceError{Kind: SurfaceTimeout}).Recoverable())
	assert.False(t, (&SurfaceError{Kind: SurfaceOutOfMemory}).Recoverable())
}

func TestFrameStateErrorMessage(t *testing.T) {
	err := &FrameStateError{Op: "QueueDraw", State: "closed"}
	assert.Equal(t, "renderer: QueueDraw called in frame state closed", err.Error())
}

func TestResourceCreationErrorUnwrap(t *testing.T) {
	inner := errors.New("too large")
	err := &ResourceCreationError{Resource: "texture", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "texture")
}
