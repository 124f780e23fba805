package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler admits num out of every den calls. A zero ratio admits
// everything.
type ratioSampler struct {
	state atomic.Uint64 // num<<32 | den
	tick  atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(num, den int) {
	if num <= 0 || den <= 0 {
		s.state.Store(0)
		return
	}
	if num > den {
		num = den
	}
	s.state.Store(uint64(num)<<32 | uint64(uint32(den)))
	s.tick.Store(0)
}

// Allow reports whether this call falls inside the admitted slice of
// the current cycle.
func (s *ratioSampler) Allow() bool {
	packed := s.state.Load()
	if packed == 0 {
		return true
	}
	num := packed >> 32
	den := packed & 0xFFFFFFFF
	n := s.tick.Add(1)
	return (n-1)%den < num
}

// parseRatioSpec reads "N/M" or a bare "M" (meaning 1/M). Zero and
// unparseable specs return 0,0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if num, den, found := strings.Cut(spec, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
