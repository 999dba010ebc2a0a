package mosaic

import "testing"

func TestRect_Intersect(t *testing.T) {
	type tc struct {
		a, b Rect
		want Rect
	}

	tests := map[string]tc{
		"overlap": {
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(50, 50, 150, 150),
			want: NewRect(50, 50, 100, 100),
		},
		"contained": {
			a:    NewRect(0, 0, 1920, 1080),
			b:    NewRect(10, 10, 20, 20),
			want: NewRect(10, 10, 20, 20),
		},
		"touching edges": {
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(100, 0, 200, 100),
			want: Rect{},
		},
		"disjoint": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(500, 500, 510, 510),
			want: Rect{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersect(tt.a); got != tt.want {
				t.Errorf("Intersect() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRect_Area(t *testing.T) {
	tests := []struct {
		r    Rect
		want int64
	}{
		{NewRect(0, 0, 1920, 1080), 1920 * 1080},
		{XYWH(10, 10, 5, 4), 20},
		{NewRect(10, 10, 5, 5), 0},
		{Rect{}, 0},
	}

	for _, tt := range tests {
		if got := tt.r.Area(); got != tt.want {
			t.Errorf("%v.Area() = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestRect_Union(t *testing.T) {
	a := NewRect(0, 0, 1920, 1080)
	b := NewRect(1920, 0, 3840, 1200)

	want := NewRect(0, 0, 3840, 1200)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("Union() with empty = %v, want %v", got, b)
	}
}

func TestRect_MoveTo(t *testing.T) {
	r := NewRect(10, 20, 60, 120)
	got := r.MoveTo(100, 0)
	want := NewRect(100, 0, 150, 100)
	if got != want {
		t.Errorf("MoveTo() = %v, want %v", got, want)
	}
	if !got.Inside(NewRect(0, 0, 200, 200)) {
		t.Errorf("Inside() = false, want true")
	}
}

func TestDirection_UnmarshalText(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    Direction
		wantErr bool
	}{
		"horizontal": {in: "horizontal", want: Horizontal},
		"short v":    {in: "v", want: Vertical},
		"mixed case": {in: "Vertical", want: Vertical},
		"invalid":    {in: "diagonal", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var d Direction
			err := d.UnmarshalText([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && d != tt.want {
				t.Errorf("UnmarshalText() = %v, want %v", d, tt.want)
			}
		})
	}
}
