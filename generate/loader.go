package generate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/labelkit"
)

// Loader defaults.
const (
	DefaultLoadTimeout  = 15 * time.Second
	DefaultCacheTTL     = 10 * time.Minute
	DefaultMaxBytes     = 20 << 20
	DefaultMaxDimension = 4096
	DefaultMaxPixels    = 40_000_000
)

var (
	// ErrImageTooLarge is returned when a source exceeds LoaderConfig.MaxBytes
	// or LoaderConfig.MaxPixels.
	ErrImageTooLarge = errors.New("generate: image too large")
	// ErrSourceNotAllowed is returned for sources outside the configured
	// schemes, hosts or networks.
	ErrSourceNotAllowed = errors.New("generate: image source not allowed")
)

// Source schemes. Bare paths count as SchemeFile.
const (
	SchemeData  = "data"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
)

// LoaderConfig configures a Loader. Zero fields take the defaults.
type LoaderConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// MaxBytes bounds the encoded size read from any source.
	MaxBytes int64
	// MaxDimension downscales decoded images whose longer edge exceeds it.
	MaxDimension int
	// MaxPixels rejects images whose declared width*height exceeds it,
	// before the pixels are decoded.
	MaxPixels int64
	// Schemes lists the accepted source schemes. Empty accepts all.
	Schemes []string
	// Hosts lists the accepted remote hosts. Empty accepts all.
	Hosts []string
	// PublicOnly refuses connections to loopback, private, link-local and
	// unspecified addresses, including after redirects.
	PublicOnly bool
}

// RestrictedLoaderConfig returns cfg limited to data URLs and public
// http(s) hosts, for scenes from untrusted callers.
func RestrictedLoaderConfig(cfg LoaderConfig) LoaderConfig {
	if len(cfg.Schemes) == 0 {
		cfg.Schemes = []string{SchemeData, SchemeHTTP, SchemeHTTPS}
	}
	cfg.Schemes = slices.DeleteFunc(slices.Clone(cfg.Schemes), func(s string) bool { return s == SchemeFile })
	cfg.PublicOnly = true
	return cfg
}

// Loader decodes images from http(s) URLs, data URLs and local files,
// caching decoded results by source.
type Loader struct {
	cfg    LoaderConfig
	client *http.Client
	cache  *cache.Cache
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLoadTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultMaxDimension
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	l := &Loader{
		cfg:   cfg,
		cache: cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
	}
	l.client = &http.Client{Timeout: cfg.Timeout, CheckRedirect: l.checkRedirect}
	if cfg.PublicOnly {
		d := &net.Dialer{Timeout: cfg.Timeout, Control: publicOnly}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.DialContext = d.DialContext
		l.client.Transport = tr
	}
	return l
}

var (
	defaultLoaderOnce sync.Once
	defaultLoader     *Loader
)

// DefaultLoader returns the process-wide loader.
func DefaultLoader() *Loader {
	defaultLoaderOnce.Do(func() {
		defaultLoader = NewLoader(LoaderConfig{})
	})
	return defaultLoader
}

// Client returns the HTTP client used for remote sources.
func (l *Loader) Client() *http.Client {
	return l.client
}

// Flush empties the cache.
func (l *Loader) Flush() {
	l.cache.Flush()
}

// Cached returns the number of cached images.
func (l *Loader) Cached() int {
	return l.cache.ItemCount()
}

// Load decodes the image at src: a data URL, an http or https URL, a
// file:// URL or a local path.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, errors.New("generate: empty image source")
	}
	key := cacheKey(src)
	if img, ok := l.cache.Get(key); ok {
		return img.(image.Image), nil
	}

	scheme := schemeOf(src)
	if err := l.allow(scheme, src); err != nil {
		return nil, err
	}

	var (
		rc  io.ReadCloser
		err error
	)
	switch scheme {
	case SchemeData:
		rc, err = openDataURL(src)
	case SchemeHTTP, SchemeHTTPS:
		rc, err = l.fetch(ctx, src)
	default:
		rc, err = os.Open(strings.TrimPrefix(src, "file://"))
	}
	if err != nil {
		return nil, fmt.Errorf("generate: load %s: %w", describe(src), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("generate: read %s: %w", describe(src), err)
	}
	if int64(len(data)) > l.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, describe(src), l.cfg.MaxBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("generate: decode %s: %w", describe(src), err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > l.cfg.MaxPixels {
		return nil, fmt.Errorf("%w: %s is %dx%d pixels", ErrImageTooLarge, describe(src), cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("generate: decode %s: %w", describe(src), err)
	}
	img = l.downscale(img)
	labelkit.Logger().Debug("generate: image loaded",
		"source", describe(src), "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	l.cache.SetDefault(key, img)
	return img, nil
}

// schemeOf classifies src. Anything that is not a data or http(s) URL is
// a file.
func schemeOf(src string) string {
	switch {
	case strings.HasPrefix(src, "data:"):
		return SchemeData
	case strings.HasPrefix(src, "http://"):
		return SchemeHTTP
	case strings.HasPrefix(src, "https://"):
		return SchemeHTTPS
	}
	return SchemeFile
}

// allow checks src against the configured schemes and hosts.
func (l *Loader) allow(scheme, src string) error {
	if len(l.cfg.Schemes) > 0 && !slices.Contains(l.cfg.Schemes, scheme) {
		return fmt.Errorf("%w: scheme %q", ErrSourceNotAllowed, scheme)
	}
	if scheme != SchemeHTTP && scheme != SchemeHTTPS || len(l.cfg.Hosts) == 0 {
		return nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("generate: load %s: %w", src, err)
	}
	return l.allowHost(u)
}

func (l *Loader) allowHost(u *url.URL) error {
	if len(l.cfg.Hosts) == 0 || slices.Contains(l.cfg.Hosts, strings.ToLower(u.Hostname())) {
		return nil
	}
	return fmt.Errorf("%w: host %q", ErrSourceNotAllowed, u.Hostname())
}

func (l *Loader) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if len(l.cfg.Schemes) > 0 && !slices.Contains(l.cfg.Schemes, req.URL.Scheme) {
		return fmt.Errorf("%w: redirect to scheme %q", ErrSourceNotAllowed, req.URL.Scheme)
	}
	return l.allowHost(req.URL)
}

// publicOnly is a net.Dialer Control hook refusing non-public addresses.
// It runs after name resolution, so DNS names pointing inward are caught.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: address %s", ErrSourceNotAllowed, host)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// downscale shrinks img so its longer edge fits MaxDimension.
func (l *Loader) downscale(img image.Image) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if longest <= l.cfg.MaxDimension {
		return img
	}
	k := float64(l.cfg.MaxDimension) / float64(longest)
	w, h := max(int(float64(b.Dx())*k), 1), max(int(float64(b.Dy())*k), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// openDataURL decodes an RFC 2397 data URL body.
func openDataURL(src string) (io.ReadCloser, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

// cacheKey keeps short sources as-is and hashes long ones (data URLs).
func cacheKey(src string) string {
	if len(src) <= 512 {
		return src
	}
	sum := sha256.Sum256([]byte(src))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// describe shortens data URLs for logs and errors.
func describe(src string) string {
	if strings.HasPrefix(src, "data:") {
		meta, _, _ := strings.Cut(src, ",")
		return meta + ",..."
	}
	return src
}
