package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	uiFace       = text.NewGoXFace(basicfont.Face7x13)
	hudTextColor = color.RGBA{R: 210, G: 220, B: 210, A: 255}
)

const (
	charW = 7
	lineH = 13
)

func drawText(dst *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, uiFace, op)
}
