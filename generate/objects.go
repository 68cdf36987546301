package generate

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/labelkit/model"
)

// Func produces an element asynchronously. It matches canvas.Generator.
type Func = func(ctx context.Context) (*model.Object, error)

// barcode image resolution per canvas pixel of the element box.
const barcodeOversample = 4

// NewUUIDObject creates a uuid element with a fresh identifier of the given
// length.
func NewUUIDObject(length int, left, top float64) (*model.Object, error) {
	id, err := UUID(length)
	if err != nil {
		return nil, err
	}
	return model.NewUUID(id, left, top), nil
}

// NewQRCodeObject creates a qrCode element with its image generated and
// cached in src.
func NewQRCodeObject(value string, level model.QRLevel, left, top, size float64) (*model.Object, error) {
	o := model.NewQRCode(value, level, left, top, size)
	if err := RefreshQRCode(o); err != nil {
		return nil, err
	}
	return o, nil
}

// RefreshQRCode regenerates the cached image of a qrCode element after its
// value, level or colors changed.
func RefreshQRCode(o *model.Object) error {
	q := o.QRCode
	if q == nil {
		return fmt.Errorf("generate: object %s has no qr code payload", o.ID)
	}
	if q.Value == "" {
		q.Src = ""
		return nil
	}
	src, err := QRCodeDataURL(q.Value, QROptions{
		Level:      q.Level,
		Size:       max(int(o.Width*o.ScaleX*2), DefaultQRSize),
		Foreground: q.Foreground,
		Background: q.Background,
	})
	if err != nil {
		return err
	}
	q.Src = src
	return nil
}

// NewBarcodeObject creates a barcode element with its image generated.
func NewBarcodeObject(value string, t model.BarcodeType, left, top, width, height float64) (*model.Object, error) {
	o := model.NewBarcode(value, t, left, top, width, height)
	if err := RefreshBarcode(o); err != nil {
		return nil, err
	}
	return o, nil
}

// RefreshBarcode regenerates the cached image of a barcode element.
func RefreshBarcode(o *model.Object) error {
	b := o.Barcode
	if b == nil {
		return fmt.Errorf("generate: object %s has no barcode payload", o.ID)
	}
	if b.Value == "" {
		b.Src = ""
		return nil
	}
	src, err := BarcodeDataURL(b.Value, b.Type,
		int(o.Width*barcodeOversample), int(o.Height*barcodeOversample))
	if err != nil {
		return err
	}
	b.Src = src
	return nil
}

// NewImageObject loads src and creates an image element at its natural
// size, scaled down to fit maxWidth×maxHeight when those are positive.
func NewImageObject(ctx context.Context, l *Loader, src string, left, top, maxWidth, maxHeight float64) (*model.Object, error) {
	img, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	w, h := naturalSize(img)
	k := 1.0
	if maxWidth > 0 {
		k = min(k, maxWidth/w)
	}
	if maxHeight > 0 {
		k = min(k, maxHeight/h)
	}
	return model.NewImage(src, left, top, w*k, h*k), nil
}

func naturalSize(img image.Image) (float64, float64) {
	b := img.Bounds()
	return float64(max(b.Dx(), 1)), float64(max(b.Dy(), 1))
}

// QRCodeFunc returns a generator for NewQRCodeObject.
func QRCodeFunc(value string, level model.QRLevel, left, top, size float64) Func {
	return func(ctx context.Context) (*model.Object, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewQRCodeObject(value, level, left, top, size)
	}
}

// BarcodeFunc returns a generator for NewBarcodeObject.
func BarcodeFunc(value string, t model.BarcodeType, left, top, width, height float64) Func {
	return func(ctx context.Context) (*model.Object, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewBarcodeObject(value, t, left, top, width, height)
	}
}

// UUIDFunc returns a generator for NewUUIDObject.
func UUIDFunc(length int, left, top float64) Func {
	return func(ctx context.Context) (*model.Object, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewUUIDObject(length, left, top)
	}
}

// ImageFunc returns a generator for NewImageObject.
func ImageFunc(l *Loader, src string, left, top, maxWidth, maxHeight float64) Func {
	return func(ctx context.Context) (*model.Object, error) {
		return NewImageObject(ctx, l, src, left, top, maxWidth, maxHeight)
	}
}
