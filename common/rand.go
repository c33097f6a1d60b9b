package common

// XorShift64 is the generator used for critical hit rolls. The zero seed is
// remapped because xorshift never leaves the all-zero state.
type XorShift64 struct {
	state uint64
}

const defaultSeed = 12345

func NewXorShift64(seed uint64) *XorShift64 {
	if seed == 0 {
		seed = defaultSeed
	}
	return &XorShift64{state: seed}
}

func (r *XorShift64) Next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 17
	r.state ^= r.state << 5
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *XorShift64) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// LCG is the linear congruential generator used for wander targets.
type LCG struct {
	state uint64
}

func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

// Float64 returns a value in [0, 1].
func (r *LCG) Float64() float64 {
	r.state = r.state*1103515245 + 12345
	return float64((r.state>>16)&0x7fff) / 32767
}
