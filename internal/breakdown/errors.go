package breakdown

import "errors"

var (
	// ErrConfiguration indicates the text-generation capability is missing
	// credentials or disabled. No external call was attempted.
	ErrConfiguration = errors.New("AI breakdown is not configured")

	// ErrExternalService indicates the text-generation call itself failed.
	ErrExternalService = errors.New("AI breakdown request failed")

	// ErrParse indicates the reply could not be repaired into a step list.
	ErrParse = errors.New("failed to parse AI response")
)
