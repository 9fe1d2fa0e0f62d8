package widget

// tickCount is the number of points on a slider scale, both ends included.
const tickCount = 11

// Tick is one point of a slider's datalist.
type Tick struct {
	Value float64
	Label string // Set on the first, middle and last tick
	Class string
}

// Ticks returns evenly spaced points from lo to hi. The first, middle and
// last points carry a label; the middle one is offset with lmargin20.
func Ticks(lo, hi float64) []Tick {
	ticks := make([]Tick, tickCount)
	last := tickCount - 1
	for i := range ticks {
		var v float64
		switch i {
		case 0:
			v = lo
		case last:
			v = hi
		default:
			v = lo + float64(i)*(hi-lo)/float64(last)
		}
		ticks[i].Value = v
		switch i {
		case 0, last:
			ticks[i].Label = formatNumber(v)
		case last / 2:
			ticks[i].Label = formatNumber(v)
			ticks[i].Class = "lmargin20"
		}
	}
	return ticks
}
