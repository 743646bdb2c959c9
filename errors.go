package rcg

import "github.com/emrzvv/rcg/internal/model"

// Error is the structured failure of every operation; match it with
// errors.Is against the sentinels below or inspect it with errors.As.
type Error = model.Error

var (
	ErrDomain               = model.ErrDomain
	ErrConvergence          = model.ErrConvergence
	ErrEnvelopeConstruction = model.ErrEnvelopeConstruction
	ErrSamplingExhausted    = model.ErrSamplingExhausted
	ErrRootFinding          = model.ErrRootFinding
)
