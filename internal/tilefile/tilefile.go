// Package tilefile knows the on-disk naming grammar of pre-rendered tiles:
// r<row>_c<col>.<ext> for full tiles and r<row>_c<col>_preview.<ext> for
// half-resolution previews, row and col zero-padded decimal, extension one
// of png, jpg, jpeg, webp (case-insensitive).
package tilefile

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"regexp"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"
)

var nameRe = regexp.MustCompile(`^r(\d+)_c(\d+)(_preview)?\.([A-Za-z]+)$`)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
}

// Info is a parsed tile filename.
type Info struct {
	Row       int
	Col       int
	Preview   bool
	Extension string
}

// ParseName matches a base filename against the tile grammar. Non-matching
// names report ok=false; many non-tile files legitimately coexist in the
// tile directories, so this is not an error.
func ParseName(name string) (Info, bool) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return Info{}, false
	}

	ext := strings.ToLower(m[4])
	if !allowedExtensions[ext] {
		return Info{}, false
	}

	row, err := strconv.Atoi(m[1])
	if err != nil {
		return Info{}, false
	}
	col, err := strconv.Atoi(m[2])
	if err != nil {
		return Info{}, false
	}

	return Info{
		Row:       row,
		Col:       col,
		Preview:   m[3] != "",
		Extension: ext,
	}, true
}

// Read loads a tile file and probes its pixel dimensions without decoding
// the full image.
func Read(path string) (data []byte, width, height int, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}

	return data, cfg.Width, cfg.Height, nil
}

// ContentType maps a tile extension to its HTTP content type.
func ContentType(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
