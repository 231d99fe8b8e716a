// Package loggrid renders a log sheet's duty statuses as the familiar
// 24-hour driver's log grid.
package loggrid

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

const (
	Width  = 800
	Height = 400

	// ContentType is the MIME type of Render's output.
	ContentType = "image/png"

	rows = 4
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}

	// Fill per status. OFF blocks stay white, only their outline shows.
	colors = map[domain.Status]color.RGBA{
		domain.StatusOffDuty: white,
		domain.StatusSleeper: {0xff, 0xe4, 0xb5, 0xff}, // moccasin
		domain.StatusDriving: {0x90, 0xee, 0x90, 0xff}, // light green
		domain.StatusOnDuty:  {0xad, 0xd8, 0xe6, 0xff}, // light blue
	}

	rowOf = map[domain.Status]int{
		domain.StatusOffDuty: 0,
		domain.StatusSleeper: 1,
		domain.StatusDriving: 2,
		domain.StatusOnDuty:  3,
	}
)

// Draw paints the grid for statuses. Statuses with an unknown status are
// skipped; a status whose end is before its start wraps past midnight and
// is drawn as two blocks.
func Draw(statuses []domain.DutyStatus) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	for _, ds := range statuses {
		row, ok := rowOf[ds.Status]
		if !ok {
			continue
		}
		if ds.EndTime < ds.StartTime {
			block(img, row, colors[ds.Status], ds.StartTime, domain.MinutesPerDay)
			block(img, row, colors[ds.Status], 0, ds.EndTime)
			continue
		}
		block(img, row, colors[ds.Status], ds.StartTime, ds.EndTime)
	}

	for h := 0; h <= 24; h++ {
		vline(img, min(xOf(domain.ClockTime(h*60)), Width-1))
	}
	for r := 0; r <= rows; r++ {
		hline(img, min(r*Height/rows, Height-1))
	}
	labels(img)
	return img
}

// Render writes the grid as PNG.
func Render(w io.Writer, statuses []domain.DutyStatus) error {
	if err := png.Encode(w, Draw(statuses)); err != nil {
		return fmt.Errorf("loggrid.Render: %w", err)
	}
	return nil
}

func xOf(t domain.ClockTime) int {
	return int(t) * Width / domain.MinutesPerDay
}

func block(img *image.RGBA, row int, fill color.RGBA, from, to domain.ClockTime) {
	r := image.Rect(xOf(from), row*Height/rows, xOf(to), (row+1)*Height/rows)
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(fill), image.Point{}, draw.Src)
	outline(img, r)
}

func outline(img *image.RGBA, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, black)
		img.SetRGBA(x, r.Max.Y-1, black)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, black)
		img.SetRGBA(r.Max.X-1, y, black)
	}
}

func vline(img *image.RGBA, x int) {
	for y := 0; y < Height; y++ {
		img.SetRGBA(x, y, black)
	}
}

func hline(img *image.RGBA, y int) {
	for x := 0; x < Width; x++ {
		img.SetRGBA(x, y, black)
	}
}

// labels writes the hour numbers along the bottom of the ON row.
func labels(img *image.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(black),
		Face: basicfont.Face7x13,
	}
	for h := 0; h < 24; h++ {
		d.Dot = fixed.P(xOf(domain.ClockTime(h*60))+5, Height-7)
		d.DrawString(strconv.Itoa(h))
	}
}
