package loader

import (
	"fmt"
	"image"
	"io"
	"os"

	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/texture"
)

// imageLoaderBackend decodes images through the registered image formats and
// converts them into RGBA staging data.
type imageLoaderBackend struct{}

var _ loaderBackend = &imageLoaderBackend{}

func newImageLoaderBackend() *imageLoaderBackend {
	return &imageLoaderBackend{}
}

func (b *imageLoaderBackend) Load(path string) (common.TextureStagingData, error) {
	img, err := b.decodeFile(path)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	return texture.FromImage(img)
}

func (b *imageLoaderBackend) LoadScaled(path string, width, height int) (common.TextureStagingData, error) {
	img, err := b.decodeFile(path)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	return texture.FromImageScaled(img, width, height)
}

func (b *imageLoaderBackend) LoadReader(r io.Reader) (common.TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return texture.FromImage(img)
}

func (b *imageLoaderBackend) decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
