package gioui

import "image/color"

var (
	backgroundColor = color.NRGBA{R: 18, G: 18, B: 18, A: 255}
	keyGapColor     = color.NRGBA{R: 40, G: 40, B: 42, A: 255}

	naturalColor        = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	naturalPressedColor = color.NRGBA{R: 128, G: 222, B: 234, A: 255}

	sharpColor        = color.NRGBA{R: 25, G: 25, B: 28, A: 255}
	sharpPressedColor = color.NRGBA{R: 0, G: 150, B: 167, A: 255}
)
