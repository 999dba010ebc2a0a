// Package xcursor creates cursors from the X core cursor font.
//
// Forked from https://github.com/BurntSushi/xgbutil/blob/master/xcursor/xcursor.go
package xcursor

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Glyphs of the cursor font used by the window manager.
const (
	XCursor           = 0
	BottomRightCorner = 14
	Crosshair         = 34
	Fleur             = 52
	Hand2             = 60
	LeftPtr           = 68
	SbHDoubleArrow    = 108
	SbVDoubleArrow    = 116
	Sizing            = 120
	TopLeftCorner     = 134
	Watch             = 150
)

const fontName = "cursor"

// Color is a 16 bit per channel RGB color.
type Color struct {
	Red, Green, Blue uint16
}

var (
	White = Color{0xffff, 0xffff, 0xffff}
	Black = Color{}
)

// CreateCursor creates a white on black cursor from glyph.
func CreateCursor(conn *xgb.Conn, glyph uint16) (xproto.Cursor, error) {
	return CreateCursorExtra(conn, glyph, White, Black)
}

func CreateCursorExtra(conn *xgb.Conn, glyph uint16, fore, back Color) (xproto.Cursor, error) {
	fontID, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}

	cursorID, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.OpenFontChecked(conn, fontID, uint16(len(fontName)), fontName).Check(); err != nil {
		return 0, fmt.Errorf("open cursor font: %w", err)
	}
	defer xproto.CloseFont(conn, fontID)

	// The mask glyph follows its cursor glyph in the font.
	if err := xproto.CreateGlyphCursorChecked(conn, cursorID, fontID, fontID,
		glyph, glyph+1,
		fore.Red, fore.Green, fore.Blue,
		back.Red, back.Green, back.Blue).Check(); err != nil {
		return 0, fmt.Errorf("create cursor %d: %w", glyph, err)
	}

	return cursorID, nil
}
