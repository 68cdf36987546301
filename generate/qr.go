package generate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/colornames"

	"github.com/gogpu/labelkit/model"
)

// DefaultQRSize is the pixel size of generated QR images when none is given.
const DefaultQRSize = 256

// QROptions control QR image generation.
type QROptions struct {
	// Level is the error-correction level. Invalid levels mean M.
	Level model.QRLevel
	// Size is the image edge in pixels. Zero means DefaultQRSize.
	Size int
	// Foreground and Background are CSS colors. Empty means black on white.
	Foreground string
	Background string
}

func (o QROptions) normalized() QROptions {
	if !o.Level.Valid() {
		o.Level = model.QRLevelM
	}
	if o.Size <= 0 {
		o.Size = DefaultQRSize
	}
	if o.Foreground == "" {
		o.Foreground = "#000000"
	}
	if o.Background == "" {
		o.Background = "#ffffff"
	}
	return o
}

func (o QROptions) key(value string) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", o.Level, o.Size, o.Foreground, o.Background, value)
}

var (
	qrCacheOnce sync.Once
	qrCache     *cache.Cache
)

func qrImages() *cache.Cache {
	qrCacheOnce.Do(func() {
		qrCache = cache.New(10*time.Minute, 20*time.Minute)
	})
	return qrCache
}

func recoveryLevel(l model.QRLevel) qrcode.RecoveryLevel {
	switch l {
	case model.QRLevelL:
		return qrcode.Low
	case model.QRLevelQ:
		return qrcode.High
	case model.QRLevelH:
		return qrcode.Highest
	}
	return qrcode.Medium
}

// QRCode encodes value as a QR code image.
func QRCode(value string, opts QROptions) (image.Image, error) {
	opts = opts.normalized()
	key := opts.key(value)
	if img, ok := qrImages().Get(key); ok {
		return img.(image.Image), nil
	}
	q, err := qrcode.New(value, recoveryLevel(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("generate: qr code: %w", err)
	}
	if c, ok := ParseColor(opts.Foreground); ok {
		q.ForegroundColor = c
	}
	if c, ok := ParseColor(opts.Background); ok {
		q.BackgroundColor = c
	}
	img := q.Image(opts.Size)
	qrImages().SetDefault(key, img)
	return img, nil
}

// QRCodePNG encodes value as a PNG QR code.
func QRCodePNG(value string, opts QROptions) ([]byte, error) {
	img, err := QRCode(value, opts)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// QRCodeDataURL encodes value as a PNG QR code data URL, the form stored
// in a qrCode element's src.
func QRCodeDataURL(value string, opts QROptions) (string, error) {
	b, err := QRCodePNG(value, opts)
	if err != nil {
		return "", err
	}
	return PNGDataURL(b), nil
}

// PNGDataURL wraps PNG bytes in a data URL.
func PNGDataURL(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("generate: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa or a CSS color name.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	c := color.NRGBA{A: 0xff}
	var err error
	switch len(hex) {
	case 6:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		return color.NRGBA{}, false
	}
	return c, err == nil
}
