/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging Errors
const (
	// ErrMessageEmpty indicates that a text message was sent with empty content.
	ErrMessageEmpty = 2001

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2002

	// ErrMessageTypeInvalid indicates an unknown message type was supplied.
	ErrMessageTypeInvalid = 2003

	// ErrRecipientNotFound indicates that the message recipient does not resolve to a known user.
	ErrRecipientNotFound = 2004

	// ErrAttachmentInvalid indicates an attachment failed MIME/extension validation.
	ErrAttachmentInvalid = 2101

	// ErrAttachmentTooLarge indicates the attachment exceeds the size limit.
	ErrAttachmentTooLarge = 2102

	// ErrImageNotFound indicates the referenced gallery image does not exist.
	ErrImageNotFound = 2103
)

// 3xxx: Account and Session Errors
const (
	// ErrUnauthorized indicates the request carries no valid authenticated principal.
	ErrUnauthorized = 3001

	// ErrInvalidUsername indicates the username failed format validation.
	ErrInvalidUsername = 3002

	// ErrInvalidPassword indicates the password failed format validation.
	ErrInvalidPassword = 3003

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3004

	// ErrUserAlreadyExists indicates the username or email is already taken.
	ErrUserAlreadyExists = 3005

	// ErrUserNotFound indicates the referenced user account does not exist.
	ErrUserNotFound = 3006

	// ErrOldPasswordInvalid indicates the current password given for a password change is wrong.
	ErrOldPasswordInvalid = 3007

	// ErrAlreadyLoggedIn indicates a signup attempt from an already authenticated session.
	ErrAlreadyLoggedIn = 3008
)

// 4xxx: Relationship State Machine Errors
const (
	// ErrSelfTarget indicates a relationship operation naming the caller itself.
	ErrSelfTarget = 4001

	// ErrAlreadyFriends indicates a friend request toward an existing friend.
	ErrAlreadyFriends = 4002

	// ErrRequestAlreadySent indicates a duplicate friend request in the same direction.
	ErrRequestAlreadySent = 4003

	// ErrRequestAlreadyReceived indicates the reverse request already exists, so the
	// caller should accept it instead of sending a new one.
	ErrRequestAlreadyReceived = 4004

	// ErrRequestNotFound indicates no pending request exists for accept/decline.
	ErrRequestNotFound = 4005

	// ErrNotificationNotFound indicates the referenced notification does not exist.
	ErrNotificationNotFound = 4006

	// ErrNotificationForbidden indicates the notification belongs to another user.
	ErrNotificationForbidden = 4007

	// ErrNotificationInvalidState indicates the notification is not an actionable friend request.
	ErrNotificationInvalidState = 4008
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates a durable store read or write failed; safe to retry.
	ErrStorageUnavailable = 5001

	// ErrFileStorageFailed indicates a blob store operation failed.
	ErrFileStorageFailed = 5002

	// ErrAIUnavailable indicates the AI provider is unconfigured or unreachable.
	ErrAIUnavailable = 5003
)
