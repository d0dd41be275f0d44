package lattice

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionPricer/internal/domain"
)

// atm is the textbook scenario: S=K=100, T=1, r=5%, q=0, vol=20%, 50 steps.
var atm = Inputs{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1, Steps: DefaultSteps}

func vanilla(strike float64, side domain.PutCall, style domain.ExerciseStyle) Vanilla {
	return Vanilla{Strike: strike, Side: side, Style: style}
}

func TestBinomial_ReferenceValues(t *testing.T) {
	tests := []struct {
		name  string
		spec  Specification
		side  domain.PutCall
		style domain.ExerciseStyle
		want  float64
	}{
		{"crr american call", CoxRossRubinstein{}, domain.Call, domain.American, 10.410691540732644},
		{"crr european call", CoxRossRubinstein{}, domain.Call, domain.European, 10.410691540732644},
		{"crr american put", CoxRossRubinstein{}, domain.Put, domain.American, 6.073727985724901},
		{"crr european put", CoxRossRubinstein{}, domain.Put, domain.European, 5.533633990803824},
		{"jarrow-rudd american put", JarrowRudd{}, domain.Put, domain.American, 6.118136098759362},
		{"jarrow-rudd european call", JarrowRudd{}, domain.Call, domain.European, 10.487447614782754},
		{"trigeorgis american put", Trigeorgis{}, domain.Put, domain.American, 6.075699660719679},
		{"tian american put", Tian{}, domain.Put, domain.American, 6.107330654508668},
		{"tian european call", Tian{}, domain.Call, domain.European, 10.480899318558649},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binomial{}.Price(vanilla(100, tt.side, tt.style), tt.spec, atm)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestTrinomial_ReferenceValues(t *testing.T) {
	tests := []struct {
		name  string
		spec  Specification
		side  domain.PutCall
		style domain.ExerciseStyle
		want  float64
	}{
		{"crr american call", CoxRossRubinstein{}, domain.Call, domain.American, 10.430611662249376},
		{"crr american put", CoxRossRubinstein{}, domain.Put, domain.American, 6.074184337993692},
		{"crr european put", CoxRossRubinstein{}, domain.Put, domain.European, 5.553554112321216},
		{"jarrow-rudd american put", JarrowRudd{}, domain.Put, domain.American, 6.092034605262542},
		{"jarrow-rudd european call", JarrowRudd{}, domain.Call, domain.European, 10.46674925063544},
		{"trigeorgis american put", Trigeorgis{}, domain.Put, domain.American, 6.053909346230022},
		{"trigeorgis european call", Trigeorgis{}, domain.Call, domain.European, 10.412878794700914},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Trinomial{}.Price(vanilla(100, tt.side, tt.style), tt.spec, atm)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestAmericanNeverBelowEuropean(t *testing.T) {
	in := Inputs{Spot: 100, Volatility: 0.3, Rate: 0.05, DividendYield: 0.02, Expiry: 1, Steps: DefaultSteps}

	for _, tree := range Trees() {
		for _, spec := range Specifications() {
			for _, strike := range []float64{80, 100, 120} {
				for _, side := range []domain.PutCall{domain.Call, domain.Put} {
					american, err := tree.Price(vanilla(strike, side, domain.American), spec, in)
					if errors.Is(err, domain.ErrUnsupportedLattice) {
						continue
					}
					require.NoError(t, err, "%s/%s K=%v %s", tree.Name(), spec.Name(), strike, side)
					european, err := tree.Price(vanilla(strike, side, domain.European), spec, in)
					require.NoError(t, err)

					assert.GreaterOrEqual(t, european, 0.0)
					assert.GreaterOrEqual(t, american, european-1e-12,
						"%s/%s K=%v %s", tree.Name(), spec.Name(), strike, side)
				}
			}
		}
	}
}

func TestAmericanPutDominatesIntrinsic(t *testing.T) {
	// Deep in the money: early exercise makes the American put worth at least K - S.
	got, err := Binomial{}.Price(vanilla(120, domain.Put, domain.American), CoxRossRubinstein{}, atm)
	require.NoError(t, err)
	assert.InDelta(t, 20.13764548472669, got, 1e-6)
	assert.GreaterOrEqual(t, got, 20.0)
}

func TestTrinomialConvergesMonotonically(t *testing.T) {
	const blackScholesCall = 10.450583572185565
	fn := vanilla(100, domain.Call, domain.European)

	prevErr := math.Inf(1)
	for _, steps := range []int{10, 25, 50, 100, 200} {
		in := atm
		in.Steps = steps
		got, err := Trinomial{}.Price(fn, CoxRossRubinstein{}, in)
		require.NoError(t, err)

		e := math.Abs(got - blackScholesCall)
		assert.Less(t, e, prevErr, "steps=%d", steps)
		prevErr = e
	}
	assert.Less(t, prevErr, 0.01)
}

func TestDividendYieldMakesEarlyCallExerciseValuable(t *testing.T) {
	in := atm
	in.DividendYield = 0.03

	american, err := Binomial{}.Price(vanilla(100, domain.Call, domain.American), CoxRossRubinstein{}, in)
	require.NoError(t, err)
	european, err := Binomial{}.Price(vanilla(100, domain.Call, domain.European), CoxRossRubinstein{}, in)
	require.NoError(t, err)

	assert.InDelta(t, 8.61435868075587, american, 1e-6)
	assert.InDelta(t, 8.614172525662454, european, 1e-6)
	assert.Greater(t, american, european)
}

func TestTree_InvalidInputs(t *testing.T) {
	fn := vanilla(100, domain.Call, domain.American)
	tests := []struct {
		name string
		in   Inputs
	}{
		{"zero steps", Inputs{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1, Steps: 0}},
		{"zero volatility", Inputs{Spot: 100, Volatility: 0, Rate: 0.05, Expiry: 1, Steps: 50}},
		{"negative spot", Inputs{Spot: -1, Volatility: 0.2, Rate: 0.05, Expiry: 1, Steps: 50}},
		{"zero expiry", Inputs{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 0, Steps: 50}},
		{"nan rate", Inputs{Spot: 100, Volatility: 0.2, Rate: math.NaN(), Expiry: 1, Steps: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, tree := range Trees() {
				_, err := tree.Price(fn, CoxRossRubinstein{}, tt.in)
				assert.ErrorIs(t, err, domain.ErrInvalidInput, tree.Name())
			}
		})
	}
}

func TestTree_ComputationOverflow(t *testing.T) {
	fn := vanilla(100, domain.Call, domain.American)

	t.Run("probability above one", func(t *testing.T) {
		// Carry far exceeds the volatility move so the CRR up probability leaves [0,1].
		in := Inputs{Spot: 100, Volatility: 0.01, Rate: 0.5, Expiry: 50, Steps: 50}
		_, err := Binomial{}.Price(fn, CoxRossRubinstein{}, in)
		assert.ErrorIs(t, err, domain.ErrComputationOverflow)
	})

	t.Run("asset price overflow", func(t *testing.T) {
		in := Inputs{Spot: 1e300, Volatility: 5, Rate: 0.05, Expiry: 10, Steps: 50}
		for _, tree := range Trees() {
			_, err := tree.Price(fn, CoxRossRubinstein{}, in)
			assert.ErrorIs(t, err, domain.ErrComputationOverflow, tree.Name())
		}
	})
}

func TestTian_TrinomialUnsupported(t *testing.T) {
	_, err := Trinomial{}.Price(vanilla(100, domain.Put, domain.American), Tian{}, atm)
	assert.ErrorIs(t, err, domain.ErrUnsupportedLattice)
}

func TestSpecification_Parameters(t *testing.T) {
	const dt = 0.02

	for _, spec := range Specifications() {
		t.Run(spec.Name(), func(t *testing.T) {
			b, err := spec.Binomial(0.2, 0.05, dt)
			require.NoError(t, err)
			assert.Greater(t, b.Up, 1.0)
			assert.Less(t, b.Down, b.Up)
			// Risk-neutral drift: E[S_dt]/S_0 equals exp(carry*dt).
			assert.InDelta(t, math.Exp(0.05*dt), b.UpProbability*b.Up+b.DownProbability()*b.Down, 1e-4)

			tri, err := spec.Trinomial(0.2, 0.05, dt)
			if errors.Is(err, domain.ErrUnsupportedLattice) {
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 1.0, tri.UpProbability+tri.MiddleProbability+tri.DownProbability, 1e-12)
			assert.InDelta(t, tri.Middle*tri.Middle, tri.Up*tri.Down, 1e-12)
		})
	}

	t.Run("crr is symmetric", func(t *testing.T) {
		b, err := CoxRossRubinstein{}.Binomial(0.2, 0.05, dt)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, b.Up*b.Down, 1e-15)
	})

	t.Run("non-positive volatility", func(t *testing.T) {
		_, err := CoxRossRubinstein{}.Binomial(0, 0.05, dt)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestParseSpecificationAndTree(t *testing.T) {
	for _, name := range []string{"", "crr", "CRR", "cox-ross-rubinstein"} {
		spec, err := ParseSpecification(name)
		require.NoError(t, err)
		assert.Equal(t, "crr", spec.Name())
	}
	spec, err := ParseSpecification("jr")
	require.NoError(t, err)
	assert.Equal(t, "jarrow-rudd", spec.Name())

	_, err = ParseSpecification("leisen-reimer")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLattice)

	tree, err := ParseTree("Trinomial")
	require.NoError(t, err)
	assert.Equal(t, "trinomial", tree.Name())

	_, err = ParseTree("quadrinomial")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLattice)

	assert.Equal(t, "crr", Default().Name())
}
