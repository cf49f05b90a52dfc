package multilock

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func randomState(rng *rand.Rand) uint64 {
	is := rng.Uint64() & maxHolders
	ix := rng.Uint64() & maxHolders
	s := rng.Uint64() & maxHolders
	x := rng.Uint64() & maxHolders
	return x<<xOffset | s<<sOffset | ix<<ixOffset | is<<isOffset
}

func TestExtractFields(t *testing.T) {
	seed := time.Now().UTC().UnixNano()
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < 100; i++ {
		is := rng.Uint64() & maxHolders
		ix := rng.Uint64() & maxHolders
		s := rng.Uint64() & maxHolders
		x := rng.Uint64() & maxHolders
		state := x<<xOffset | s<<sOffset | ix<<ixOffset | is<<isOffset

		assert.Equal(t, is, extractIS(state), "seed %d: expected %016x; got %016x", seed, is, extractIS(state))
		assert.Equal(t, ix, extractIX(state), "seed %d: expected %016x; got %016x", seed, ix, extractIX(state))
		assert.Equal(t, s, extractS(state), "seed %d: expected %016x; got %016x", seed, s, extractS(state))
		assert.Equal(t, x, extractX(state), "seed %d: expected %016x; got %016x", seed, x, extractX(state))
	}
}

// Adding a field's unit constant must adjust that field alone, so long as
// the field is not saturated.
func TestUnitArithmeticIsolation(t *testing.T) {
	seed := time.Now().UTC().UnixNano()
	rng := rand.New(rand.NewSource(seed))
	units := []uint64{isUnit, ixUnit, sUnit, xUnit}
	for i := 0; i < 100; i++ {
		state := randomState(rng)
		for _, u := range units {
			if field(state, u) == maxHolders {
				continue
			}
			bumped := state + u
			for _, v := range units {
				want := field(state, v)
				if v == u {
					want++
				}
				assert.Equal(t, want, field(bumped, v),
					"seed %d: unit %s disturbed field %s of %016x", seed, modeName(u), modeName(v), state)
			}
			if field(state, u) > 0 {
				dropped := state - u
				assert.Equal(t, field(state, u)-1, field(dropped, u))
			}
		}
	}
}

func TestFieldMatchesExtract(t *testing.T) {
	seed := time.Now().UTC().UnixNano()
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < 100; i++ {
		state := randomState(rng)
		assert.Equal(t, extractIS(state), field(state, isUnit))
		assert.Equal(t, extractIX(state), field(state, ixUnit))
		assert.Equal(t, extractS(state), field(state, sUnit))
		assert.Equal(t, extractX(state), field(state, xUnit))
	}
}

func TestModeName(t *testing.T) {
	assert.Equal(t, "IS", modeName(isUnit))
	assert.Equal(t, "IX", modeName(ixUnit))
	assert.Equal(t, "S", modeName(sUnit))
	assert.Equal(t, "X", modeName(xUnit))
}
