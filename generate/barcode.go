package generate

import (
	"errors"
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"

	"github.com/gogpu/labelkit/model"
)

// ErrUnsupportedBarcode is returned for symbologies without an encoder.
var ErrUnsupportedBarcode = errors.New("generate: unsupported barcode type")

// Barcode encodes value in symbology t and scales it to width×height
// pixels. The width grows to the symbol's module count when smaller.
func Barcode(value string, t model.BarcodeType, width, height int) (image.Image, error) {
	bc, err := encodeBarcode(value, t)
	if err != nil {
		return nil, err
	}
	width = max(width, bc.Bounds().Dx())
	height = max(height, 1)
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("generate: scale %s barcode: %w", t, err)
	}
	return scaled, nil
}

// BarcodePNG encodes value as a PNG barcode.
func BarcodePNG(value string, t model.BarcodeType, width, height int) ([]byte, error) {
	img, err := Barcode(value, t, width, height)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// BarcodeDataURL encodes value as a PNG barcode data URL.
func BarcodeDataURL(value string, t model.BarcodeType, width, height int) (string, error) {
	b, err := BarcodePNG(value, t, width, height)
	if err != nil {
		return "", err
	}
	return PNGDataURL(b), nil
}

var eanKinds = map[model.BarcodeType]string{
	model.BarcodeEAN13: barcode.TypeEAN13,
	model.BarcodeEAN8:  barcode.TypeEAN8,
}

func encodeBarcode(value string, t model.BarcodeType) (barcode.Barcode, error) {
	var (
		bc  barcode.Barcode
		err error
	)
	switch t {
	case model.BarcodeCode128:
		bc, err = code128.Encode(value)
	case model.BarcodeCode39:
		bc, err = code39.Encode(value, false, true)
	case model.BarcodeEAN13, model.BarcodeEAN8:
		bc, err = ean.Encode(value)
		if err == nil && bc.Metadata().CodeKind != eanKinds[t] {
			err = fmt.Errorf("value has %d digits", len(value))
		}
	case model.BarcodeUPC:
		// UPC-A is EAN-13 with a leading zero.
		bc, err = ean.Encode("0" + value)
	case model.BarcodeITF14:
		if len(value) == 13 {
			value, err = twooffive.AddCheckSum(value)
			if err != nil {
				break
			}
		}
		bc, err = twooffive.Encode(value, true)
	case model.BarcodeCodabar:
		bc, err = codabar.Encode(value)
	case model.BarcodeMSI:
		bc, err = encodeMSI(value)
	case model.BarcodePharmacode:
		bc, err = encodePharmacode(value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBarcode, t)
	}
	if err != nil {
		return nil, fmt.Errorf("generate: %s barcode: %w", t, err)
	}
	return bc, nil
}
