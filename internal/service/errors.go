package service

import "errors"

var (
	ErrNoValuation = errors.New("error no valuation computed yet")
)
