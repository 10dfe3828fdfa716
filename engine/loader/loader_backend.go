package loader

import (
	"io"

	"github.com/flint2d/flint/common"
)

// loaderBackend defines the generic interface for decoding image assets from
// files or streams into texture staging data. Concrete implementations
// (e.g., imageLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes an image file into RGBA staging data.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - error: error if decoding fails
	Load(path string) (common.TextureStagingData, error)

	// LoadScaled decodes an image file and resamples it to the given
	// dimensions.
	//
	// Parameters:
	//   - path: the file path to load
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - common.TextureStagingData: the resampled pixels
	//   - error: error if decoding or resampling fails
	LoadScaled(path string, width, height int) (common.TextureStagingData, error)

	// LoadReader decodes an image from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing image data
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - error: error if decoding fails
	LoadReader(r io.Reader) (common.TextureStagingData, error)
}
