package config

import "time"

const (
	// Inference request timeout
	RequestTimeout = 90 * time.Second

	// Auth
	TokenTTL       = 7 * 24 * time.Hour
	MinPasswordLen = 6
	BcryptCost     = 10

	// Country selected when the client sends none
	DefaultCountry = "usa"

	// Answer shown when the inference payload carries no text
	FallbackAnswer = "Unable to process your request."
)
