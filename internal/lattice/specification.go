package lattice

import (
	"fmt"
	"math"
	"strings"

	"optionPricer/internal/domain"
)

const (
	// DefaultSteps is the number of time steps used when none is configured.
	DefaultSteps = 50

	probabilityTolerance = 1e-12
)

// Specification derives per-step lattice parameters from volatility, cost of carry and step length.
// Implementations are immutable values and safe for concurrent use.
type Specification interface {
	// Name returns the canonical name used in configuration and persisted valuations.
	Name() string
	// Binomial returns the two-branch parameters for a step of length dt.
	Binomial(volatility, carry, dt float64) (BinomialParameters, error)
	// Trinomial returns the three-branch parameters for a step of length dt.
	Trinomial(volatility, carry, dt float64) (TrinomialParameters, error)
}

// BinomialParameters are the multiplicative moves and risk-neutral probability of one binomial step.
type BinomialParameters struct {
	Up            float64
	Down          float64
	UpProbability float64
}

// DownProbability returns 1 - UpProbability.
func (p BinomialParameters) DownProbability() float64 {
	return 1 - p.UpProbability
}

func (p BinomialParameters) validate() error {
	if !finite(p.Up) || !finite(p.Down) || !finite(p.UpProbability) {
		return fmt.Errorf("non-finite binomial parameters %+v: %w", p, domain.ErrComputationOverflow)
	}
	if p.Down <= 0 || p.Up <= p.Down {
		return fmt.Errorf("binomial factors up=%v down=%v must satisfy up > down > 0: %w", p.Up, p.Down, domain.ErrComputationOverflow)
	}
	if p.UpProbability < -probabilityTolerance || p.UpProbability > 1+probabilityTolerance {
		return fmt.Errorf("binomial up probability %v outside [0,1]: %w", p.UpProbability, domain.ErrComputationOverflow)
	}
	return nil
}

// TrinomialParameters are the multiplicative moves and risk-neutral probabilities of one trinomial step.
// The lattice recombines because Up*Down == Middle*Middle.
type TrinomialParameters struct {
	Up                float64
	Middle            float64
	Down              float64
	UpProbability     float64
	MiddleProbability float64
	DownProbability   float64
}

func (p TrinomialParameters) validate() error {
	for _, v := range []float64{p.Up, p.Middle, p.Down, p.UpProbability, p.MiddleProbability, p.DownProbability} {
		if !finite(v) {
			return fmt.Errorf("non-finite trinomial parameters %+v: %w", p, domain.ErrComputationOverflow)
		}
	}
	if p.Down <= 0 || p.Middle <= p.Down || p.Up <= p.Middle {
		return fmt.Errorf("trinomial factors up=%v middle=%v down=%v must be strictly ordered and positive: %w",
			p.Up, p.Middle, p.Down, domain.ErrComputationOverflow)
	}
	for _, prob := range []float64{p.UpProbability, p.MiddleProbability, p.DownProbability} {
		if prob < -probabilityTolerance || prob > 1+probabilityTolerance {
			return fmt.Errorf("trinomial probability %v outside [0,1]: %w", prob, domain.ErrComputationOverflow)
		}
	}
	if sum := p.UpProbability + p.MiddleProbability + p.DownProbability; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("trinomial probabilities sum to %v: %w", sum, domain.ErrComputationOverflow)
	}
	return nil
}

// Default returns the process default specification, Cox-Ross-Rubinstein.
func Default() Specification {
	return CoxRossRubinstein{}
}

// Specifications lists every supported parameterization.
func Specifications() []Specification {
	return []Specification{CoxRossRubinstein{}, JarrowRudd{}, Trigeorgis{}, Tian{}}
}

// ParseSpecification resolves a configuration name to a Specification.
func ParseSpecification(name string) (Specification, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "crr", "cox-ross-rubinstein", "coxrossrubinstein":
		return CoxRossRubinstein{}, nil
	case "jr", "jarrow-rudd", "jarrowrudd":
		return JarrowRudd{}, nil
	case "trigeorgis":
		return Trigeorgis{}, nil
	case "tian":
		return Tian{}, nil
	default:
		return nil, fmt.Errorf("unknown lattice specification %q: %w", name, domain.ErrUnsupportedLattice)
	}
}

func checkStep(volatility, dt float64) error {
	if !finite(volatility) || volatility <= 0 {
		return fmt.Errorf("lattice volatility %v must be positive: %w", volatility, domain.ErrInvalidInput)
	}
	if !finite(dt) || dt <= 0 {
		return fmt.Errorf("lattice time step %v must be positive: %w", dt, domain.ErrInvalidInput)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
