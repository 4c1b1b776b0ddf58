package lexicon

import "errors"

var (
	// ErrInvalidLexicon is returned when a lexicon fails validation.
	ErrInvalidLexicon = errors.New("invalid lexicon")

	// ErrUnknownPlaceholder is returned for templates naming a placeholder
	// that cannot be substituted in their table.
	ErrUnknownPlaceholder = errors.New("unknown template placeholder")
)
