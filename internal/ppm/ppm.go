// Package ppm reads the binary PPM (P6) and PGM (P5) images referenced by
// input records.
package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/model"
)

var (
	// ErrFormat is returned for headers that are not binary P5/P6.
	ErrFormat = errors.New("ppm: invalid format")
	// ErrTruncated is returned when the raster is shorter than the header claims.
	ErrTruncated = errors.New("ppm: truncated raster")
)

// Decode reads one image from r.
func Decode(r io.Reader) (model.Image, error) {
	br := bufio.NewReader(r)

	magic, err := token(br)
	if err != nil {
		return model.Image{}, err
	}
	var depth uint8
	switch magic {
	case "P5":
		depth = 8
	case "P6":
		depth = 24
	default:
		return model.Image{}, fmt.Errorf("%w: magic %q", ErrFormat, magic)
	}

	var dims [3]int
	for i := range dims {
		if dims[i], err = number(br); err != nil {
			return model.Image{}, err
		}
	}
	width, height, maxVal := dims[0], dims[1], dims[2]
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return model.Image{}, fmt.Errorf("%w: dimensions %dx%d", ErrFormat, width, height)
	}
	if maxVal <= 0 || maxVal > 255 {
		return model.Image{}, fmt.Errorf("%w: max value %d", ErrFormat, maxVal)
	}

	img := model.Image{Width: uint16(width), Height: uint16(height), Depth: depth}
	img.Data = make([]byte, img.Size())
	if n, err := io.ReadFull(br, img.Data); err != nil {
		return model.Image{}, fmt.Errorf("%w: read %d of %d bytes", ErrTruncated, n, len(img.Data))
	}
	return img, nil
}

// ReadFile decodes the image at path.
func ReadFile(fsys fs.FileSystem, path string) (model.Image, error) {
	f, err := fs.Open(fs.Or(fsys), path)
	if err != nil {
		return model.Image{}, err
	}
	defer f.Close()
	img, err := Decode(f)
	if err != nil {
		return model.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// token reads one whitespace-delimited header token, skipping comments.
// It consumes exactly one whitespace byte after the token.
func token(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: premature end of header", ErrFormat)
			}
			return "", err
		}
		switch {
		case c == '#' && len(buf) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", fmt.Errorf("%w: premature end of header", ErrFormat)
			}
		case isSpace(c):
			if len(buf) > 0 {
				return string(buf), nil
			}
		default:
			buf = append(buf, c)
		}
	}
}

func number(br *bufio.Reader) (int, error) {
	tok, err := token(br)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range []byte(tok) {
		if c < '0' || c > '9' || n > math.MaxInt32/10 {
			return 0, fmt.Errorf("%w: bad header value %q", ErrFormat, tok)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
