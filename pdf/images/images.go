// Package images decodes raster images into replaced layout content.
package images

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // registers GIF for the generic decoder
	"image/jpeg"
	"image/png"
	"os"

	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

// Common errors
var (
	ErrDecodeFailed      = errors.New("image decode failed")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// ColorSpace represents a PDF color space.
type ColorSpace string

const (
	ColorSpaceGray ColorSpace = "DeviceGray"
	ColorSpaceRGB  ColorSpace = "DeviceRGB"
	ColorSpaceCMYK ColorSpace = "DeviceCMYK"
)

// Format represents a source image format.
type Format string

const (
	FormatPNG  Format = "PNG"
	FormatJPEG Format = "JPEG"
	FormatGIF  Format = "GIF"
)

// defaultDPI is used when the file carries no resolution.
const defaultDPI = 72

// Image is a decoded image ready for embedding. It is replaced content
// whose intrinsic size is its pixel size at its resolution.
type Image struct {
	// Width and Height are in pixels.
	Width            int
	Height           int
	BitsPerComponent int
	ColorSpace       ColorSpace
	// Data is the sample data encoded with Filter: DCTDecode for JPEG
	// files, FlateDecode otherwise.
	Data   []byte
	Filter string
	// Alpha is the FlateDecode-compressed soft mask, nil when opaque.
	Alpha  []byte
	Format Format
	DPIx   float64
	DPIy   float64

	pixels image.Image
}

// Load reads and decodes an image file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data)
}

// Decode decodes PNG, JPEG or GIF data.
func Decode(data []byte) (*Image, error) {
	switch detectFormat(data) {
	case FormatPNG:
		return decodePNG(data)
	case FormatJPEG:
		return decodeJPEG(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	out, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	out.Format = FormatGIF
	return out, nil
}

// FromImage converts a Go image at 72 dpi.
func FromImage(img image.Image) (*Image, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	cs := ColorSpaceRGB
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		cs = ColorSpaceGray
	case color.CMYKModel:
		cs = ColorSpaceCMYK
	}
	opaque := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}

	samples := make([]byte, 0, width*height*components(cs))
	var alpha []byte
	if !opaque {
		alpha = make([]byte, 0, width*height)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			switch cs {
			case ColorSpaceGray:
				g := color.GrayModel.Convert(c).(color.Gray)
				samples = append(samples, g.Y)
			case ColorSpaceCMYK:
				k := color.CMYKModel.Convert(c).(color.CMYK)
				samples = append(samples, k.C, k.M, k.Y, k.K)
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				samples = append(samples, n.R, n.G, n.B)
				if !opaque {
					alpha = append(alpha, n.A)
				}
			}
		}
	}

	data, err := compressZlib(samples)
	if err != nil {
		return nil, err
	}
	out := &Image{
		Width:            width,
		Height:           height,
		BitsPerComponent: 8,
		ColorSpace:       cs,
		Data:             data,
		Filter:           "FlateDecode",
		DPIx:             defaultDPI,
		DPIy:             defaultDPI,
		pixels:           img,
	}
	if alpha != nil {
		if out.Alpha, err = compressZlib(alpha); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func components(cs ColorSpace) int {
	switch cs {
	case ColorSpaceGray:
		return 1
	case ColorSpaceCMYK:
		return 4
	}
	return 3
}

// IntrinsicSize returns the image size in points.
func (img *Image) IntrinsicSize(float64) layout.Size {
	return layout.Size{
		Width:  float64(img.Width) * 72 / img.DPIx,
		Height: float64(img.Height) * 72 / img.DPIy,
	}
}

// Replaced returns true.
func (*Image) Replaced() bool { return true }

// HasAlpha reports whether the image carries a soft mask.
func (img *Image) HasAlpha() bool {
	return len(img.Alpha) > 0
}

// Pixels returns the decoded image, decoding JPEG data on first use.
func (img *Image) Pixels() (image.Image, error) {
	if img.pixels != nil {
		return img.pixels, nil
	}
	p, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	img.pixels = p
	return p, nil
}

// detectFormat detects the image format from the file header.
func detectFormat(data []byte) Format {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return FormatPNG
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF
	}
	return ""
}

func decodePNG(data []byte) (*Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	out, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	out.Format = FormatPNG
	out.DPIx, out.DPIy = extractPNGDPI(data)
	return out, nil
}

// extractPNGDPI reads the pHYs chunk.
func extractPNGDPI(data []byte) (float64, float64) {
	offset := 8
	for offset+12 <= len(data) {
		chunkLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		chunkType := string(data[offset+4 : offset+8])

		if chunkType == "pHYs" && offset+12+chunkLen <= len(data) && chunkLen >= 9 {
			chunk := data[offset+8 : offset+8+chunkLen]
			if chunk[8] == 1 {
				// pixels per meter
				x := float64(binary.BigEndian.Uint32(chunk[0:4])) / 39.3701
				y := float64(binary.BigEndian.Uint32(chunk[4:8])) / 39.3701
				if x > 0 && y > 0 {
					return x, y
				}
			}
		}
		if chunkType == "IEND" {
			break
		}
		offset += 12 + chunkLen
	}
	return defaultDPI, defaultDPI
}

// decodeJPEG keeps the original data for DCTDecode.
func decodeJPEG(data []byte) (*Image, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidDimensions
	}

	cs := ColorSpaceRGB
	switch cfg.ColorModel {
	case color.GrayModel:
		cs = ColorSpaceGray
	case color.CMYKModel:
		cs = ColorSpaceCMYK
	}
	dpiX, dpiY := extractJPEGDPI(data)
	return &Image{
		Width:            cfg.Width,
		Height:           cfg.Height,
		BitsPerComponent: 8,
		ColorSpace:       cs,
		Data:             data,
		Filter:           "DCTDecode",
		Format:           FormatJPEG,
		DPIx:             dpiX,
		DPIy:             dpiY,
	}, nil
}

// extractJPEGDPI reads the JFIF APP0 density.
func extractJPEGDPI(data []byte) (float64, float64) {
	offset := 2
	for offset+4 < len(data) {
		if data[offset] != 0xFF {
			break
		}
		marker := data[offset+1]
		if marker == 0xD9 || marker == 0xDA {
			break
		}
		length := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))

		if marker == 0xE0 && offset+2+length <= len(data) && length >= 16 {
			app0 := data[offset+4 : offset+2+length]
			if bytes.HasPrefix(app0, []byte("JFIF\x00")) {
				x := float64(binary.BigEndian.Uint16(app0[8:10]))
				y := float64(binary.BigEndian.Uint16(app0[10:12]))
				if x > 0 && y > 0 {
					switch app0[7] {
					case 1:
						return x, y
					case 2:
						return x * 2.54, y * 2.54
					}
				}
			}
		}
		offset += 2 + length
	}
	return defaultDPI, defaultDPI
}

// compressZlib compresses data using zlib.
func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
