/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that an inbound frame was not valid JSON
	// or did not match the expected payload shape.
	ErrInvalidJSONFormat = 1002
)

// 2xxx: Join and Messaging Business Logic Errors
const (
	// ErrUsernameAndRoomRequired indicates a join with an empty username or
	// room after trimming surrounding whitespace.
	ErrUsernameAndRoomRequired = 2101

	// ErrUsernameInUse indicates the display name is already taken in the
	// target room (case-insensitive comparison).
	ErrUsernameInUse = 2102

	// ErrAlreadyJoined indicates a second join attempt on a connection that
	// already holds a registered user. One join per connection lifetime.
	ErrAlreadyJoined = 2103

	// ErrUnknownUser indicates a message-style event from a connection that
	// never completed a join.
	ErrUnknownUser = 2201

	// ErrProfanity indicates the message text was rejected by the profanity
	// filter.
	ErrProfanity = 2202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
