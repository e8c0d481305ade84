package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// LowHealth is the health fraction at or below which tokens turn red.
const LowHealth = 0.3

type fontKey struct {
	path string
	bold bool
	size float64
}

// assetCache keeps decoded sprites and font faces across renders.
type assetCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	faces  map[fontKey]font.Face
}

var cache = assetCache{
	images: make(map[string]image.Image),
	faces:  make(map[fontKey]font.Face),
}

func (a *assetCache) image(path string) (image.Image, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	img, ok := a.images[path]
	return img, ok
}

func (a *assetCache) face(k fontKey) (font.Face, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	f, ok := a.faces[k]
	return f, ok
}

// LoadImage decodes an image file once and serves later calls from memory.
func LoadImage(path string) (image.Image, error) {
	if img, ok := cache.image(path); ok {
		return img, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	cache.mu.Lock()
	cache.images[path] = img
	cache.mu.Unlock()
	return img, nil
}

// LoadFont loads a TTF font face. An empty path falls back to the embedded
// Go fonts, so labels render without any assets on disk.
func LoadFont(path string, size float64, bold bool) (font.Face, error) {
	key := fontKey{path, bold, size}
	if face, ok := cache.face(key); ok {
		return face, nil
	}

	var fontBytes []byte
	switch {
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fontBytes = b
	case bold:
		fontBytes = gobold.TTF
	default:
		fontBytes = goregular.TTF
	}

	ft, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	cache.faces[key] = face
	cache.mu.Unlock()
	return face, nil
}

// ParseHexColor reads #RRGGBB or #RRGGBBAA. Anything else is opaque black.
func ParseHexColor(s string) color.RGBA {
	black := color.RGBA{A: 255}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return black
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// DrawShadow draws a soft elliptical ground shadow of width w centred on (x, y).
func DrawShadow(dc *gg.Context, x, y, w, alpha float64) {
	for _, scale := range []float64{1, 0.75, 0.5} {
		dc.SetRGBA(0, 0, 0, alpha/3)
		dc.DrawEllipse(x, y, w/2*scale, w/5*scale)
		dc.Fill()
	}
}

// ShadeByHealth reddens a sprite once health drops to LowHealth, more
// strongly the closer it gets to zero. Healthier sprites come back as is.
func ShadeByHealth(img image.Image, percent float64) image.Image {
	if percent > LowHealth {
		return img
	}
	k := 0.2 + 0.4*(1-max(percent, 0)/LowHealth)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		c.R = mix(c.R, 255, k)
		c.G = mix(c.G, 0, k)
		c.B = mix(c.B, 0, k)
		return c
	})
}

func mix(a, b uint8, k float64) uint8 {
	return uint8(float64(a)*(1-k) + float64(b)*k + 0.5)
}

// HPColor shades from green through yellow to red as health drops
func HPColor(percent float64) color.RGBA {
	switch {
	case percent > 0.6:
		return ParseHexColor("#2ECC71")
	case percent > LowHealth:
		return ParseHexColor("#F1C40F")
	default:
		return ParseHexColor("#E74C3C")
	}
}

// EncodePNG returns the PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// GetAssetPath joins parts under the assets directory
func GetAssetPath(assetsDir string, parts ...string) string {
	if assetsDir == "" {
		base, _ := os.Getwd()
		assetsDir = filepath.Join(base, "assets")
	}
	return filepath.Join(append([]string{assetsDir}, parts...)...)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
