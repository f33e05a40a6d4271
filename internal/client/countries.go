package client

// Countries the assistant knows how to advise on. The server accepts any
// country code; this list only drives client-side selection and display.
var CountryNames = map[string]string{
	"usa":       "United States",
	"uk":        "United Kingdom",
	"canada":    "Canada",
	"australia": "Australia",
}
