package services

import "errors"

var (
	// ErrUserNotFound maps to a client error at the boundary: the webhook
	// vendor sent an id we do not know.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPayload marks malformed or out-of-range input. No side
	// effects have happened when it is returned.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidStarter is returned when the one-time character
	// initialization names a value outside the restricted starter set.
	ErrInvalidStarter = errors.New("invalid starter customization")

	// ErrCustomizationLocked is returned when a user selects a cosmetic they
	// have not unlocked yet.
	ErrCustomizationLocked = errors.New("customization not unlocked")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
