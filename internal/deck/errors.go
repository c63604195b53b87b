package deck

import "errors"

// ErrValidation marks caller mistakes: missing required fields, invalid
// enum values. HTTP maps it to 400.
var ErrValidation = errors.New("validation failed")

// ErrSlideNotFound is returned when the presentation exists but the slide
// id does not. HTTP maps it (like store.ErrNotFound) to 404.
var ErrSlideNotFound = errors.New("slide not found")
