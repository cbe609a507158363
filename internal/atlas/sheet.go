package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadSheet decodes a PNG, BMP or WebP sheet into RGBA. The sheet must hold at
// least one whole cell.
func LoadSheet(path string, tileWidth int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", path, err)
	}
	if img.Bounds().Dx() < tileWidth {
		return nil, fmt.Errorf("sheet %s narrower than one %dpx cell", path, tileWidth)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// PackSheet lays images out left to right in a single row, scaling each to a
// tileWidth square.
func PackSheet(images []image.Image, tileWidth int) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, errors.New("pack sheet: no images")
	}
	if tileWidth <= 0 {
		return nil, errors.New("pack sheet: tile width must be positive")
	}
	sheet := image.NewRGBA(image.Rect(0, 0, tileWidth*len(images), tileWidth))
	for i, img := range images {
		cell := image.Rect(i*tileWidth, 0, (i+1)*tileWidth, tileWidth)
		draw.NearestNeighbor.Scale(sheet, cell, img, img.Bounds(), draw.Src, nil)
	}
	return sheet, nil
}

// PaletteSheet builds a sheet of flat-colour cells with a darker one pixel
// rim, for running without texture assets.
func PaletteSheet(colors []color.RGBA, tileWidth int) (*image.RGBA, error) {
	images := make([]image.Image, len(colors))
	for i, c := range colors {
		cell := image.NewRGBA(image.Rect(0, 0, tileWidth, tileWidth))
		draw.Draw(cell, cell.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		rim := color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
		for p := range tileWidth {
			cell.SetRGBA(p, 0, rim)
			cell.SetRGBA(p, tileWidth-1, rim)
			cell.SetRGBA(0, p, rim)
			cell.SetRGBA(tileWidth-1, p, rim)
		}
		images[i] = cell
	}
	return PackSheet(images, tileWidth)
}

// DefaultPalette colours the first cells of a generated sheet.
var DefaultPalette = []color.RGBA{
	{95, 159, 53, 255},   // grass top
	{121, 105, 71, 255},  // grass side
	{134, 96, 67, 255},   // dirt
	{125, 125, 125, 255}, // stone
	{219, 207, 163, 255}, // sand
}
