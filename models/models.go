package models

import "errors"

var (
	ErrMissingField = errors.New("missing required field")
	ErrTextTooLong  = errors.New("text too long")
)

// MaxMessageLength is the longest warble a user can post
const MaxMessageLength = 140

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{&User{}, &Message{}, &Follow{}, &Like{}}
}
