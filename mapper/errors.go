package mapper

import "errors"

// ErrLexiconRequired is returned when a nil lexicon is supplied.
var ErrLexiconRequired = errors.New("lexicon required")
