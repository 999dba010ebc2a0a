// Package mosaic splits a rectangle between tiles along one axis.
package mosaic

import "log/slog"

// DefaultRetries is how many times a layout pass restarts after a tile declines its offer.
const DefaultRetries = 2

type (
	// Tile is something a Tiler can hand a rectangle to.
	Tile interface {
		Rect() Rect
		FixedRect() bool
		SetFixedRect(fixed bool)
		// UpdateRect offers r to the tile. It returns false when the tile
		// needs more room than r, in which case Rect reports what it took.
		UpdateRect(r Rect) bool
	}

	// Tiler negotiates the rects of a row or column of tiles. The zero
	// value is ready to use with DefaultRetries.
	Tiler struct {
		Retries int

		width       int
		height      int
		allocWidth  int
		allocHeight int
	}
)

// Allocatable returns the share offered to each flexible tile in the last pass.
func (t *Tiler) Allocatable() (width, height int) {
	return t.allocWidth, t.allocHeight
}

func (t *Tiler) retries() int {
	if t.Retries <= 0 {
		return DefaultRetries
	}
	return t.Retries
}

func (t *Tiler) prepare(owner Rect, dir Direction, tiles []Tile, skip func(int) bool) {
	t.width, t.height = owner.Width(), owner.Height()

	count := 0
	fixedCount, fixedExtent := 0, 0
	for i, tile := range tiles {
		if skip(i) {
			continue
		}
		count++
		if tile.FixedRect() {
			fixedCount++
			fixedExtent += dir.Extent(tile.Rect())
		}
	}

	if count == 0 {
		t.allocWidth, t.allocHeight = t.width, t.height
		return
	}
	t.allocWidth, t.allocHeight = t.width/count, t.height/count

	extent := dir.Extent(owner)
	if fixedCount == count && fixedExtent < extent {
		for i, tile := range tiles {
			if !skip(i) {
				tile.SetFixedRect(false)
			}
		}
		return
	}

	if fixedCount > 0 && fixedExtent < extent {
		share := (extent - fixedExtent) / max(count-fixedCount, 1)
		if dir == Horizontal {
			t.allocWidth = share
		} else {
			t.allocHeight = share
		}
	}
}

func (t *Tiler) offer(left, top int, dir Direction) Rect {
	if dir == Horizontal {
		return XYWH(left, top, t.allocWidth, t.height)
	}
	return XYWH(left, top, t.width, t.allocHeight)
}

// Layout hands every tile not rejected by skip its rect inside owner,
// starting at index from. When tiles need more room than owner has, it
// returns false and the rect owner would have to grow to.
func (t *Tiler) Layout(owner Rect, dir Direction, tiles []Tile, from int, skip func(int) bool) (Rect, bool) {
	if skip == nil {
		skip = func(int) bool { return false }
	}
	if from < 0 || from >= len(tiles) {
		from = 0
	}

	t.prepare(owner, dir, tiles, skip)

	last, count := -1, 0
	for i := range tiles {
		if !skip(i) {
			last = i
			count++
		}
	}

	var maxWidth, maxHeight int
	for attempt := 0; ; attempt++ {
		restart := false
		// Only tiles declining in the last pass count towards the size owner needs.
		maxWidth, maxHeight = t.width, t.height

		left, top := owner.Left, owner.Top
		for i := from - 1; i >= 0; i-- {
			if skip(i) {
				continue
			}
			prev := tiles[i].Rect()
			if dir == Horizontal {
				left = prev.Right
			} else {
				top = prev.Bottom
			}
			break
		}

		for i := from; i < len(tiles); i++ {
			if skip(i) {
				continue
			}
			tile := tiles[i]

			var r Rect
			if tile.FixedRect() {
				r = tile.Rect()
				if r.Left != left || r.Top != top {
					r = r.MoveTo(left, top)
				}
				r.Right = min(r.Right, owner.Right)
				r.Bottom = min(r.Bottom, owner.Bottom)

				if dir == Horizontal {
					if r.Height() != t.height {
						r.Bottom = r.Top + t.height
						tile.SetFixedRect(false)
					}
					if count > 1 && r.Width() == t.width {
						tile.SetFixedRect(false)
						r = t.offer(left, top, dir)
					}
				} else {
					if r.Width() != t.width {
						r.Right = r.Left + t.width
						tile.SetFixedRect(false)
					}
					if count > 1 && r.Height() == t.height {
						tile.SetFixedRect(false)
						r = t.offer(left, top, dir)
					}
				}
			} else {
				r = t.offer(left, top, dir)
				if i == last {
					// The last flexible tile takes the division remainder.
					if dir == Horizontal {
						r.Right = max(r.Right, owner.Right)
					} else {
						r.Bottom = max(r.Bottom, owner.Bottom)
					}
				}
			}

			if !tile.UpdateRect(r) {
				got := tile.Rect()
				if got.Right > r.Right || got.Bottom > r.Bottom {
					tile.SetFixedRect(true)
					restart = true
					t.prepare(owner, dir, tiles, skip)
					maxWidth = max(maxWidth, got.Right-owner.Left)
					maxHeight = max(maxHeight, got.Bottom-owner.Top)
				}
			}

			if dir == Horizontal {
				left += r.Width()
			} else {
				top += r.Height()
			}
		}

		if !restart {
			break
		}
		if attempt >= t.retries() {
			slog.Warn("Layout did not settle, keeping best effort", "package", "mosaic", "retries", t.retries(), "owner", owner)
			break
		}
		from = 0
	}

	if maxWidth != t.width || maxHeight != t.height {
		return XYWH(owner.Left, owner.Top, maxWidth, maxHeight), false
	}
	return owner, true
}
