package domain

import "errors"

var (
	// ErrCaptureUnavailable is returned when the region provider produced no pixel buffer
	ErrCaptureUnavailable = errors.New("screen region unavailable")

	// ErrRecognitionEmpty is returned when no usable text was recognized for the question or options
	ErrRecognitionEmpty = errors.New("recognition produced no usable text")

	// ErrLocalizationEmpty is returned when no localization strategy produced a position
	ErrLocalizationEmpty = errors.New("no button positions located")

	// ErrMatchUnresolved is returned when the chosen answer maps to no option or button
	ErrMatchUnresolved = errors.New("answer could not be matched to an option")

	// ErrSearchFailure is returned when a web search request fails
	ErrSearchFailure = errors.New("web search request failed")

	// ErrRecognizerFailure is returned when an OCR backend request fails
	ErrRecognizerFailure = errors.New("recognizer backend failed")
)
