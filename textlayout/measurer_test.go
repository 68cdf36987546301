package textlayout

import (
	"math"
	"sync"
	"testing"
)

func TestAdvanceGrowsWithText(t *testing.T) {
	m := NewMeasurer()
	st := Style{Family: "Arial", Size: 20}

	short := m.Advance("ab", st)
	long := m.Advance("abcdef", st)
	if short <= 0 {
		t.Fatalf("Advance(ab) = %v, want > 0", short)
	}
	if long <= short {
		t.Errorf("Advance(abcdef) = %v, want > %v", long, short)
	}
	if got := m.Advance("", st); got != 0 {
		t.Errorf("Advance(\"\") = %v, want 0", got)
	}
}

func TestAdvanceScalesWithSize(t *testing.T) {
	m := NewMeasurer()
	a := m.Advance("Label", Style{Size: 10})
	b := m.Advance("Label", Style{Size: 20})
	if b < 1.9*a || b > 2.1*a {
		t.Errorf("Advance at 20px = %v, want about twice %v", b, a)
	}
}

func TestCharSpacing(t *testing.T) {
	m := NewMeasurer()
	base := m.Advance("abc", Style{Size: 10})
	spaced := m.Advance("abc", Style{Size: 10, CharSpacing: 100})
	// two gaps of 100/1000 em at 10px
	if d := spaced - base; d < 1.99 || d > 2.01 {
		t.Errorf("char spacing added %v, want 2", d)
	}
}

func TestMeasureMultiline(t *testing.T) {
	m := NewMeasurer()
	st := Style{Size: 10, LineHeight: 1.5}
	ext := m.Measure("first line\nx", st)
	if ext.Lines != 2 {
		t.Errorf("Lines = %d, want 2", ext.Lines)
	}
	if ext.Height != 30 {
		t.Errorf("Height = %v, want 30", ext.Height)
	}
	if ext.Width != m.Advance("first line", st) {
		t.Errorf("Width = %v, want widest line", ext.Width)
	}
}

func TestMeasurerConcurrent(t *testing.T) {
	m := NewMeasurer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Advance("concurrent", Style{Size: 12, Bold: i%2 == 0})
		}()
	}
	wg.Wait()
}

func TestFontSelection(t *testing.T) {
	if !IsBold("700") || !IsBold("Bold") || IsBold("normal") {
		t.Error("IsBold misclassified a weight")
	}
	if !IsItalic("italic") || IsItalic("normal") {
		t.Error("IsItalic misclassified a style")
	}
	if &FontData("Courier New", false, false)[0] == &FontData("Arial", false, false)[0] {
		t.Error("monospace family should not share the proportional font")
	}
}

func TestAscent(t *testing.T) {
	st := Style{Family: "Arial", Size: 20}
	a := Default().Ascent(st)
	if a <= 0 || a >= 20 {
		t.Errorf("Ascent(20px) = %v, want within (0, 20)", a)
	}
	if got := Default().Ascent(Style{Family: "Arial", Size: 40}); math.Abs(got-2*a) > 1e-9 {
		t.Errorf("Ascent(40px) = %v, want %v", got, 2*a)
	}
	if got := Default().Ascent(Style{}); got != 0 {
		t.Errorf("Ascent(size 0) = %v, want 0", got)
	}
}
