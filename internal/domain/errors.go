package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTariffNotFound  = errors.New("tariff not found")
)
