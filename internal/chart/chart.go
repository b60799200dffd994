// Package chart draws small PNG charts: bars, a histogram and a scatter plot.
package chart

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNoData = errors.New("no data to plot")

const (
	width   = 720
	height  = 420
	marginL = 70
	marginR = 20
	marginT = 36
	marginB = 80
	dotSize = 3
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axisColor  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	gridColor  = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	barColor   = color.RGBA{0x87, 0xce, 0xeb, 0xff}
	histColor  = color.RGBA{0x80, 0x00, 0x80, 0xff}
	dotColor   = color.RGBA{0x00, 0x80, 0x80, 0xff}
)

type Point struct {
	X, Y float64
}

type canvas struct {
	img *image.RGBA
}

func newCanvas(title string) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	c := &canvas{img: img}
	c.text(marginL, marginT-14, title, axisColor)
	return c
}

func (c *canvas) plotArea() image.Rectangle {
	return image.Rect(marginL, marginT, width-marginR, height-marginB)
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// axes draws both axes plus horizontal grid lines with labels for the
// y range [0, yMax].
func (c *canvas) axes(yMax float64) {
	area := c.plotArea()
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := yMax * float64(i) / ticks
		y := area.Max.Y - int(float64(area.Dy())*float64(i)/ticks)
		if i > 0 {
			c.fill(image.Rect(area.Min.X, y, area.Max.X, y+1), gridColor)
		}
		label := formatTick(v)
		c.text(area.Min.X-textWidth(label)-6, y+4, label, axisColor)
	}
	c.fill(image.Rect(area.Min.X, area.Min.Y, area.Min.X+1, area.Max.Y), axisColor)
	c.fill(image.Rect(area.Min.X, area.Max.Y, area.Max.X, area.Max.Y+1), axisColor)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bar draws one bar per label. Labels too wide for their slot are cut.
func Bar(title string, labels []string, values []float64) ([]byte, error) {
	if len(labels) == 0 || len(labels) != len(values) {
		return nil, ErrNoData
	}
	return bars(title, labels, values, barColor)
}

// Histogram draws bin counts as touching bars labelled by their lower edge.
func Histogram(title string, edges []float64, counts []int) ([]byte, error) {
	if len(counts) == 0 || len(edges) != len(counts) {
		return nil, ErrNoData
	}
	labels := make([]string, len(edges))
	values := make([]float64, len(counts))
	for i := range counts {
		labels[i] = strconv.FormatFloat(edges[i], 'f', 1, 64)
		values[i] = float64(counts[i])
	}
	return bars(title, labels, values, histColor)
}

func bars(title string, labels []string, values []float64, col color.Color) ([]byte, error) {
	c := newCanvas(title)
	area := c.plotArea()

	yMax := 0.0
	for _, v := range values {
		yMax = math.Max(yMax, v)
	}
	yMax = niceMax(yMax)
	c.axes(yMax)

	slot := float64(area.Dx()) / float64(len(values))
	gap := int(slot * 0.15)
	for i, v := range values {
		x0 := area.Min.X + int(slot*float64(i)) + gap
		x1 := area.Min.X + int(slot*float64(i+1)) - gap
		if x1 <= x0 {
			x1 = x0 + 1
		}
		h := int(float64(area.Dy()) * v / yMax)
		c.fill(image.Rect(x0, area.Max.Y-h, x1, area.Max.Y), col)

		label := fitLabel(labels[i], int(slot))
		lx := area.Min.X + int(slot*float64(i)+slot/2) - textWidth(label)/2
		// Alternate rows so neighbouring labels do not collide.
		ly := area.Max.Y + 16 + (i%2)*14
		c.text(lx, ly, label, axisColor)
	}
	return c.encode()
}

// Scatter plots points with both axes scaled to the data.
func Scatter(title string, points []Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	c := newCanvas(title)
	area := c.plotArea()

	xMin, xMax := points[0].X, points[0].X
	yMax := 0.0
	for _, p := range points {
		xMin = math.Min(xMin, p.X)
		xMax = math.Max(xMax, p.X)
		yMax = math.Max(yMax, p.Y)
	}
	if xMin == xMax {
		xMin--
		xMax++
	}
	yMax = niceMax(yMax)
	c.axes(yMax)

	for _, p := range points {
		x := area.Min.X + int(float64(area.Dx())*(p.X-xMin)/(xMax-xMin))
		y := area.Max.Y - int(float64(area.Dy())*p.Y/yMax)
		c.fill(image.Rect(x-dotSize, y-dotSize, x+dotSize, y+dotSize), dotColor)
	}

	lo := strconv.FormatFloat(xMin, 'f', 1, 64)
	hi := strconv.FormatFloat(xMax, 'f', 1, 64)
	c.text(area.Min.X, area.Max.Y+16, lo, axisColor)
	c.text(area.Max.X-textWidth(hi), area.Max.Y+16, hi, axisColor)
	return c.encode()
}

// niceMax rounds v up to 1, 2 or 5 times a power of ten.
func niceMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func formatTick(v float64) string {
	switch {
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', -1, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', -1, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

func fitLabel(s string, px int) string {
	r := []rune(s)
	for len(r) > 1 && textWidth(string(r)) > px*2 {
		r = r[:len(r)-1]
	}
	return string(r)
}
