package domain

import "errors"

// Pricing error taxonomy. Re-exported by ports for adapters and services.
var (
	ErrInvalidInput        = errors.New("invalid pricing input")
	ErrComputationOverflow = errors.New("numeric overflow or instability during pricing")
	ErrUnsupportedLattice  = errors.New("unsupported lattice or tree")
)
