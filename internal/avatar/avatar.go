// Package avatar renders deterministic placeholder avatars for users whose
// identity payload carried no picture. The same seed always produces the
// same image, so the URL can be stored and served statelessly.
package avatar

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	"golang.org/x/image/draw"
)

// PathPrefix is the URL prefix under which placeholder avatars are served.
// The identity sync rule uses it to distinguish placeholders from real
// provider-supplied avatars.
const PathPrefix = "/avatars/"

// Size is the pixel width and height of a rendered avatar.
const Size = 256

// grid is the number of identicon cells per axis.
const grid = 5

// URL returns the placeholder avatar URL for a seed (usually the user's
// name or email).
func URL(seed string) string {
	return PathPrefix + url.PathEscape(seed) + ".png"
}

// IsPlaceholder reports whether an avatar URL points at the placeholder
// generator rather than a real provider-supplied image.
func IsPlaceholder(avatarURL string) bool {
	return strings.Contains(avatarURL, PathPrefix)
}

// Render produces a PNG identicon for the seed. The image is a symmetric
// 5x5 cell pattern in a color derived from the seed hash, upscaled with
// nearest-neighbor to keep the cells crisp.
func Render(seed string) ([]byte, error) {
	sum := sha256.Sum256([]byte(seed))

	fg := color.NRGBA{
		R: 128 + sum[0]/2,
		G: 128 + sum[1]/2,
		B: 128 + sum[2]/2,
		A: 255,
	}
	bg := color.NRGBA{R: 240, G: 240, B: 245, A: 255}

	// Mirror the left half onto the right so the pattern is symmetric.
	cells := image.NewNRGBA(image.Rect(0, 0, grid, grid))
	for y := 0; y < grid; y++ {
		for x := 0; x <= grid/2; x++ {
			bit := sum[3+(y*(grid/2+1)+x)%28]
			c := bg
			if bit%2 == 1 {
				c = fg
			}
			cells.SetNRGBA(x, y, c)
			cells.SetNRGBA(grid-1-x, y, c)
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), cells, cells.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding avatar: %w", err)
	}
	return buf.Bytes(), nil
}
