package services

import "errors"

var (
	ErrEditModeDisabled = errors.New("edit mode is disabled")
	ErrNoDrag           = errors.New("no obstacle is being dragged")
	ErrObstacleNotFound = errors.New("obstacle not found")
	ErrInvalidLayout    = errors.New("invalid layout")
	ErrInvalidCanvas    = errors.New("invalid canvas")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrNoDatabase       = errors.New("event store has no database")
)
