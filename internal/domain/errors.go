package domain

import "errors"

var (
	ErrAuthInvalid        = errors.New("invalid or expired credential")
	ErrAuthMissing        = errors.New("missing credential")
	ErrAuthExpiredRefresh = errors.New("refresh token invalid, sign in again")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrRefreshConsumed    = errors.New("refresh token already consumed")

	ErrUsernameEmpty    = errors.New("username empty")
	ErrUsernameInvalid  = errors.New("username has surrounding whitespace")
	ErrUsernameTooShort = errors.New("username too short")
	ErrUsernameTooLong  = errors.New("username too long")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrRoomNameInvalid  = errors.New("invalid room name")

	ErrRoomNotFound     = errors.New("room not found")
	ErrNotMember        = errors.New("not a member of the room")
	ErrBanned           = errors.New("banned from the room")
	ErrAlreadyMember    = errors.New("already a member of the room")
	ErrEmptyText        = errors.New("empty message text")
	ErrTextTooLong      = errors.New("message text too long")
	ErrTransportFailure = errors.New("connection cannot accept writes")
	ErrConnectionClosed = errors.New("connection closed")
	ErrRateLimited      = errors.New("too many messages")
	ErrBadRequest       = errors.New("malformed request")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrAuthInvalid, "auth_invalid"},
	{ErrAuthMissing, "auth_missing"},
	{ErrAuthExpiredRefresh, "auth_expired_refresh"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrUsernameTaken, "username_taken"},
	{ErrUserNotFound, "user_not_found"},
	{ErrForbidden, "forbidden"},
	{ErrUsernameEmpty, "invalid_username"},
	{ErrUsernameInvalid, "invalid_username"},
	{ErrUsernameTooShort, "invalid_username"},
	{ErrUsernameTooLong, "invalid_username"},
	{ErrPasswordTooShort, "invalid_password"},
	{ErrPasswordTooLong, "invalid_password"},
	{ErrRoomNameInvalid, "invalid_room_name"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrNotMember, "not_member"},
	{ErrBanned, "banned"},
	{ErrAlreadyMember, "already_member"},
	{ErrEmptyText, "empty_text"},
	{ErrTextTooLong, "text_too_long"},
	{ErrTransportFailure, "transport_failure"},
	{ErrConnectionClosed, "connection_closed"},
	{ErrRateLimited, "rate_limited"},
	{ErrBadRequest, "bad_request"},
}

// ErrorCode maps an error to the stable code sent to clients.
// Unknown errors collapse to "internal".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
