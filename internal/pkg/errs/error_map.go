/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize both HTTP responses and WebSocket acknowledgments.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every
// application error code. The key is the error code (int), and the value
// contains the client-facing message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},

	// 2xxx: Join and Messaging Business Logic Errors
	ErrUsernameAndRoomRequired: {Code: ErrUsernameAndRoomRequired, Message: "Username and room are required!"},
	ErrUsernameInUse:           {Code: ErrUsernameInUse, Message: "Username is in use!"},
	ErrAlreadyJoined:           {Code: ErrAlreadyJoined, Message: "Already joined a room."},
	ErrUnknownUser:             {Code: ErrUnknownUser, Message: "No such user or room exists"},
	ErrProfanity:               {Code: ErrProfanity, Message: "Profanity is not allowed!"},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
