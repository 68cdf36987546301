package export

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gogpu/labelkit/generate"
	"github.com/gogpu/labelkit/model"
)

// ImageSource resolves an image reference: a URL, file path, data URL, or
// one of the qrcode:/barcode: URIs produced for elements whose generated
// image is not cached yet.
type ImageSource interface {
	Image(ctx context.Context, src string) (image.Image, error)
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context, src string) (image.Image, error)

// Image calls f.
func (f ImageSourceFunc) Image(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Pixel sizes used when generating QR and barcode images on demand. The
// painter scales them to the element box.
const (
	GeneratedQRSize        = 512
	GeneratedBarcodeWidth  = 1024
	GeneratedBarcodeHeight = 256
)

var (
	defaultImagesOnce sync.Once
	defaultImages     ImageSource
)

// DefaultImages returns a process-wide source backed by generate's
// default loader.
func DefaultImages() ImageSource {
	defaultImagesOnce.Do(func() {
		defaultImages = NewImageSource(ImageSourceFunc(generate.DefaultLoader().Load))
	})
	return defaultImages
}

// NewImageSource wraps loader so that generated-content URIs are produced
// with generate and everything else is loaded by loader.
func NewImageSource(loader ImageSource) ImageSource {
	return generatedImages{next: loader}
}

type generatedImages struct {
	next ImageSource
}

func (g generatedImages) Image(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, QRScheme):
		parts := strings.SplitN(strings.TrimPrefix(src, QRScheme), ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("export: malformed qr source %q", src)
		}
		return generate.QRCode(parts[3], generate.QROptions{
			Level:      model.QRLevel(parts[0]),
			Size:       GeneratedQRSize,
			Foreground: parts[1],
			Background: parts[2],
		})
	case strings.HasPrefix(src, BarcodeScheme):
		typ, value, ok := strings.Cut(strings.TrimPrefix(src, BarcodeScheme), ":")
		if !ok {
			return nil, fmt.Errorf("export: malformed barcode source %q", src)
		}
		return generate.Barcode(value, model.BarcodeType(typ), GeneratedBarcodeWidth, GeneratedBarcodeHeight)
	}
	return g.next.Image(ctx, src)
}
