/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Messaging Errors
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message content cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrMessageTypeInvalid:    {Code: ErrMessageTypeInvalid, Message: "Unsupported message type.", Status: http.StatusBadRequest},
	ErrRecipientNotFound:     {Code: ErrRecipientNotFound, Message: "Recipient not found.", Status: http.StatusNotFound},
	ErrAttachmentInvalid:     {Code: ErrAttachmentInvalid, Message: "Invalid attachment.", Status: http.StatusBadRequest},
	ErrAttachmentTooLarge:    {Code: ErrAttachmentTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrImageNotFound:         {Code: ErrImageNotFound, Message: "Image not found.", Status: http.StatusNotFound},

	// 3xxx: Account and Session Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username or email is already taken.", Status: http.StatusConflict},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrOldPasswordInvalid: {Code: ErrOldPasswordInvalid, Message: "Current password is incorrect.", Status: http.StatusBadRequest},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in.", Status: http.StatusBadRequest},

	// 4xxx: Relationship State Machine Errors
	ErrSelfTarget:               {Code: ErrSelfTarget, Message: "You cannot perform this action on yourself.", Status: http.StatusBadRequest},
	ErrAlreadyFriends:           {Code: ErrAlreadyFriends, Message: "Already friends with this user.", Status: http.StatusConflict},
	ErrRequestAlreadySent:       {Code: ErrRequestAlreadySent, Message: "Friend request already sent.", Status: http.StatusConflict},
	ErrRequestAlreadyReceived:   {Code: ErrRequestAlreadyReceived, Message: "This user already sent you a friend request. Check your notifications.", Status: http.StatusConflict},
	ErrRequestNotFound:          {Code: ErrRequestNotFound, Message: "Friend request not found.", Status: http.StatusNotFound},
	ErrNotificationNotFound:     {Code: ErrNotificationNotFound, Message: "Notification not found.", Status: http.StatusNotFound},
	ErrNotificationForbidden:    {Code: ErrNotificationForbidden, Message: "Not authorized to act on this notification.", Status: http.StatusForbidden},
	ErrNotificationInvalidState: {Code: ErrNotificationInvalidState, Message: "This notification is not an actionable friend request.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Service temporarily unavailable. Please retry.", Status: http.StatusServiceUnavailable},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusServiceUnavailable},
	ErrAIUnavailable:      {Code: ErrAIUnavailable, Message: "AI service is not available at the moment.", Status: http.StatusServiceUnavailable},
}
