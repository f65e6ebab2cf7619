// Package identity talks to the user directory that backs patient intake.
// Users are keyed by a generated id and are unique by email; a second create
// with a known email fails with a conflict error (code 409).
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a user id is unknown.
var ErrNotFound = errors.New("identity: user not found")

// User is a directory entry.
type User struct {
	ID        string    `json:"$id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Users is the directory contract consumed by the intake actions.
type Users interface {
	Create(ctx context.Context, id, email, phone, name string) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, queries ...Query) ([]User, error)
}

// Error is a directory failure carrying the backend status code.
type Error struct {
	Code    int    `json:"code"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("identity: %d %s: %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("identity: %d: %s", e.Code, e.Message)
}

// Conflict builds the error returned for a duplicate user.
func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Type: "user_already_exists", Message: message}
}

// IsConflict reports whether err is a directory error with code 409.
func IsConflict(err error) bool {
	var target *Error
	return errors.As(err, &target) && target.Code == http.StatusConflict
}

// NewID returns a fresh unique user id.
func NewID() string {
	return uuid.NewString()
}
