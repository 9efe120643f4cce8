package util

import "errors"

var (
	ErrModelInvalid      = errors.New("model definition failed validation")
	ErrIntegrationFailed = errors.New("ODE integration produced non-finite state")
	ErrUnknownExperiment = errors.New("unknown experiment")
	ErrUnknownGroup      = errors.New("unknown experiment group")
)
