package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidDistance  = errors.New("distance must be greater than zero")
	ErrNoPhone          = errors.New("no contact number available")
	ErrNoCoordinates    = errors.New("unable to get location coordinates for directions")
	ErrSubmitGated      = errors.New("required fields missing")
	ErrUploadLimit      = errors.New("upload limit reached")
	ErrVoiceUnsupported = errors.New("voice recognition unsupported")
)
