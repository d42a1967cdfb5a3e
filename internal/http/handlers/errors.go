package handlers

import "errors"

var (
	errUnauthorized = errors.New("missing or invalid token")
	errInvalidID    = errors.New("invalid id")
	errInvalidBody  = errors.New("invalid request body")
	errInvalidQuery = errors.New("invalid query parameter")
	errRedirect     = errors.New("payment result redirect is misconfigured")
)
