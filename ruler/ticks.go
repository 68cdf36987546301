package ruler

import (
	"math"
	"strconv"
)

// MinTickSpacing is the smallest on-screen distance, in pixels, between two
// drawn ticks. Denser ticks are thinned out.
const MinTickSpacing = 2.0

// MaxTicks bounds the number of ticks one call returns. Longer rulers get
// a coarser major step.
const MaxTicks = 10000

// Tick is one ruler mark.
type Tick struct {
	// Offset is the screen distance from the ruler origin in pixels.
	Offset float64 `json:"offset"`
	// Major ticks fall on whole units and carry a label.
	Major bool   `json:"major"`
	Label string `json:"label,omitempty"`
}

// majorSteps is the 1-2-5 progression used when whole-unit ticks would be
// closer than MinTickSpacing.
var majorSteps = []float64{1, 2, 5}

// GenerateTicks lays out ticks along a ruler lengthPx canvas pixels long at
// the given zoom. Major ticks fall every unit and minor ticks every tenth
// of a unit. Minor ticks closer than MinTickSpacing on screen are dropped;
// when even major ticks would be that close the major step grows through
// 2, 5, 10, 20, 50, ... units. Non-finite or non-positive inputs yield no
// ticks.
func GenerateTicks(lengthPx float64, u Unit, zoom float64) []Tick {
	if !finitePositive(lengthPx) || !finitePositive(zoom) {
		return nil
	}
	unitPx := PxPerUnit(u) * zoom
	screenLen := lengthPx * zoom
	if !finitePositive(unitPx) || !finitePositive(screenLen) {
		return nil
	}

	step, ok := majorStep(unitPx, screenLen)
	if !ok {
		return nil
	}
	majorPx := step * unitPx
	majors := math.Floor(screenLen/majorPx) + 1
	withMinor := step == 1 && unitPx/10 >= MinTickSpacing && majors*10 <= MaxTicks

	var ticks []Tick
	for i := 0; ; i++ {
		off := float64(i) * majorPx
		if off > screenLen+1e-9 {
			break
		}
		ticks = append(ticks, Tick{
			Offset: off,
			Major:  true,
			Label:  strconv.FormatFloat(float64(i)*step, 'f', -1, 64),
		})
		if !withMinor {
			continue
		}
		for k := 1; k < 10; k++ {
			m := off + float64(k)*unitPx/10
			if m > screenLen+1e-9 {
				break
			}
			ticks = append(ticks, Tick{Offset: m})
		}
	}
	return ticks
}

// majorStep returns the smallest 1-2-5 step, in units, whose ticks are at
// least MinTickSpacing apart and number at most MaxTicks over screenLen.
func majorStep(unitPx, screenLen float64) (float64, bool) {
	scale := 1.0
	for range 308 {
		for _, s := range majorSteps {
			px := s * scale * unitPx
			if px >= MinTickSpacing && screenLen/px < MaxTicks {
				return s * scale, true
			}
		}
		scale *= 10
	}
	return 0, false
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
