// Command split cuts a large source image into the fixed-size tile grid the
// server expects: r<row>_c<col>.png full tiles plus half-resolution
// r<row>_c<col>_preview.png files, written into one output directory.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func main() {
	input := flag.String("input", "", "path to the source image")
	output := flag.String("output", "images", "output directory for tiles")
	tileSize := flag.Int("size", 128, "tile edge size in pixels")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	img, err := imaging.Open(*input)
	if err != nil {
		log.Fatalf("failed to open source image: %v", err)
	}

	if err := os.MkdirAll(*output, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	cols := (width + *tileSize - 1) / *tileSize
	rows := (height + *tileSize - 1) / *tileSize

	fmt.Printf("Tile size: %dx%d\n", *tileSize, *tileSize)
	fmt.Printf("Grid: %d rows x %d cols = %d tiles\n", rows, cols, rows*cols)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			left := col * *tileSize
			top := row * *tileSize
			right := min(left+*tileSize, width)
			bottom := min(top+*tileSize, height)

			// edge tiles may be smaller than the full tile size
			tile := imaging.Crop(img, image.Rect(left, top, right, bottom))

			name := fmt.Sprintf("r%03d_c%03d.png", row, col)
			if err := imaging.Save(tile, filepath.Join(*output, name)); err != nil {
				log.Fatalf("failed to save tile %s: %v", name, err)
			}

			previewWidth := max((right-left)/2, 1)
			previewHeight := max((bottom-top)/2, 1)
			preview := imaging.Resize(tile, previewWidth, previewHeight, imaging.Lanczos)

			previewName := fmt.Sprintf("r%03d_c%03d_preview.png", row, col)
			if err := imaging.Save(preview, filepath.Join(*output, previewName)); err != nil {
				log.Fatalf("failed to save preview %s: %v", previewName, err)
			}
		}
	}

	fmt.Println("Done")
}
