package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlapLength(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want int64
	}{
		{"identical", Interval{100, 200}, Interval{100, 200}, 101},
		{"contained", Interval{100, 200}, Interval{150, 160}, 11},
		{"partial left", Interval{100, 200}, Interval{50, 120}, 21},
		{"touching end", Interval{100, 200}, Interval{200, 300}, 1},
		{"adjacent", Interval{100, 200}, Interval{201, 300}, 0},
		{"disjoint", Interval{100, 200}, Interval{500, 600}, 0},
		{"single base", Interval{5, 5}, Interval{5, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverlapLength(tt.a, tt.b))
			assert.Equal(t, tt.want, OverlapLength(tt.b, tt.a), "symmetric")
		})
	}
}

func TestOverlapRatio(t *testing.T) {
	assert.Equal(t, 1.0, OverlapRatio(Interval{100, 200}, Interval{100, 200}))
	assert.Equal(t, 1.0, OverlapRatio(Interval{7, 7}, Interval{7, 7}))
	assert.Zero(t, OverlapRatio(Interval{100, 200}, Interval{300, 400}))

	// Denominator is the longer interval, not the union.
	assert.InDelta(t, 91.0/101.0, OverlapRatio(Interval{300, 400}, Interval{305, 395}), 1e-12)
	assert.InDelta(t, 11.0/101.0, OverlapRatio(Interval{150, 160}, Interval{100, 200}), 1e-12)
}

func TestOverlapRatio_Properties(t *testing.T) {
	intervals := []Interval{
		{1, 1}, {1, 10}, {5, 15}, {10, 10}, {11, 20}, {100, 250}, {240, 400},
	}
	for _, a := range intervals {
		assert.Equal(t, 1.0, OverlapRatio(a, a), "self ratio for %v", a)
		for _, b := range intervals {
			r := OverlapRatio(a, b)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
			assert.Equal(t, r, OverlapRatio(b, a))
			if !Overlaps(a, b) {
				assert.Zero(t, OverlapLength(a, b))
				assert.Zero(t, r)
			}
		}
	}
}

func TestInterval_Contains(t *testing.T) {
	iv := Interval{100, 200}
	assert.True(t, iv.Contains(100), "start boundary inclusive")
	assert.True(t, iv.Contains(200), "end boundary inclusive")
	assert.False(t, iv.Contains(99))
	assert.False(t, iv.Contains(201))
	assert.Equal(t, int64(101), iv.Length())
}
