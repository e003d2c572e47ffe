package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerがそのままJSONにできるエラー
// Messageはクライアントに見せる文言
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

const (
	MsgLoginRequired      = "Email and password are required"
	MsgInvalidCredentials = "Invalid credentials"
	MsgLoginError         = "Error during login"

	MsgAuthRequired      = "Authentication required"
	MsgInvalidToken      = "Invalid token"
	MsgUserNotActive     = "User not found or inactive"
	MsgTokenValidateFail = "Error validating token"

	MsgCreateRequired  = "Name, email, and password are required"
	MsgAdminRequired   = "Admin access required"
	MsgLastAdminDelete = "Cannot delete the last admin user. Create another admin user first before deleting this one."
	MsgLastAdminDemote = "Cannot demote the last admin user. Promote another user to admin first."

	MsgListError    = "Error retrieving users"
	MsgGetError     = "Error retrieving user"
	MsgCreateError  = "Error creating user"
	MsgUpdateError  = "Error updating user"
	MsgDeleteError  = "Error deleting user"
	MsgSetAdminFail = "Error updating user role"

	MsgUserDeleted  = "User deleted successfully"
	MsgUserPromoted = "User role updated to Admin"
)

func errUserNotFound(id string) error {
	return NewHTTPError(http.StatusNotFound, fmt.Sprintf("User with ID %s not found", id))
}

func errEmailExists(email string) error {
	return NewHTTPError(http.StatusConflict, fmt.Sprintf("User with email %s already exists", email))
}

func errEmailInUse(email string) error {
	return NewHTTPError(http.StatusConflict, fmt.Sprintf("Email %s is already in use by another user", email))
}
