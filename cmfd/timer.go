package cmfd

import (
	"fmt"
	"time"
)

// phaseTimer accumulates wall-clock time per named solver phase across
// acceleration cycles.
type phaseTimer struct {
	order     []string
	durations map[string]time.Duration
	counts    map[string]int
}

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{
		durations: make(map[string]time.Duration),
		counts:    make(map[string]int),
	}
}

// Time starts timing a phase and returns the function that stops it.
func (t *phaseTimer) Time(phase string) func() {
	start := time.Now()
	return func() {
		if _, seen := t.durations[phase]; !seen {
			t.order = append(t.order, phase)
		}
		t.durations[phase] += time.Since(start)
		t.counts[phase]++
	}
}

func (t *phaseTimer) PrintReport() {
	fmt.Printf("CMFD timing report:\n")
	for _, phase := range t.order {
		fmt.Printf("  %-24s %12v  (%d calls)\n", phase, t.durations[phase], t.counts[phase])
	}
}
