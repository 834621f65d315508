package predict

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image is a decoded upload.
type Image struct {
	Image  image.Image
	Format string
	MIME   string
	// Digest is the SHA-256 of the raw upload and identifies it in the
	// prediction cache.
	Digest string
	// Hash is the perceptual difference hash. Flat images collide, so it is
	// only reported alongside Digest, never used as an identity on its own.
	Hash string
}

// DecodeImage sniffs and decodes raw bytes. Anything that is not a decodable
// image yields an error wrapping ErrUnsupportedImage.
func DecodeImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedImage, mt.String())
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnsupportedImage, mt.String(), err)
	}

	sum := sha256.Sum256(data)
	out := &Image{Image: img, Format: format, MIME: mt.String(), Digest: hex.EncodeToString(sum[:])}
	if h, err := goimagehash.DifferenceHash(img); err == nil {
		out.Hash = h.ToString()
	}
	return out, nil
}
