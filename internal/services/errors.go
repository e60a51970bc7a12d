// Package services holds the generation pipelines: drafting a campaign
// message, enhancing an image idea, and the full enhance, submit and poll
// image flow. This file centralizes the service-level validation errors.
// Provider and task failures use the taxonomy in package domain.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrEmptyIdea is returned when the idea is empty after trimming.
	ErrEmptyIdea = errors.New("idea is empty")

	// ErrIdeaTooLong is returned when the idea exceeds the configured rune limit.
	ErrIdeaTooLong = errors.New("idea too long")
)
