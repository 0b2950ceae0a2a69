/*
Package transport classifies backend call failures for display.

PURPOSE:
  Network failures arrive as free-text error strings (driver messages, HTTP
  status lines, proxy output). Users get exactly one human-readable message
  per failure category, never a raw error or stack trace. Classification is
  substring matching over the lowercased message - crude, but it is the
  contract the surrounding UI was built on.

  Transport failures are never retried automatically; they are reported
  once per attempt and a new user-triggered action is required.
*/
package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the user-facing failure class.
type Category string

const (
	Connectivity   Category = "connectivity"
	CrossOrigin    Category = "cors"
	ExpiredSession Category = "expired_session"
	Permission     Category = "permission"
	ServerFault    Category = "server_fault"
	Generic        Category = "generic"
)

// messages maps each category to its single user-facing message.
var messages = map[Category]string{
	Connectivity:   "Could not reach the server. Check your connection and try again.",
	CrossOrigin:    "The server rejected the request origin. Contact your administrator.",
	ExpiredSession: "Your session has expired. Please sign in again.",
	Permission:     "You do not have permission to perform this action.",
	ServerFault:    "The server encountered an error. Please try again later.",
	Generic:        "Something went wrong. Please try again.",
}

// substring match tables, checked in order. First hit wins.
var classifiers = []struct {
	category Category
	needles  []string
}{
	{Connectivity, []string{"connection refused", "no such host", "network is unreachable", "timeout", "timed out", "failed to fetch"}},
	{CrossOrigin, []string{"cors", "cross-origin"}},
	{ExpiredSession, []string{"401", "unauthorized", "token expired", "session expired"}},
	{Permission, []string{"403", "forbidden", "permission denied"}},
	{ServerFault, []string{"500", "internal server error", "bad gateway", "service unavailable"}},
}

// Classify maps an error message onto a failure category.
func Classify(err error) Category {
	if err == nil {
		return Generic
	}
	msg := strings.ToLower(err.Error())
	for _, c := range classifiers {
		for _, needle := range c.needles {
			if strings.Contains(msg, needle) {
				return c.category
			}
		}
	}
	return Generic
}

// Message returns the single user-facing message for a category.
func Message(c Category) string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[Generic]
}

// Error wraps a transport failure with its classification. The cause stays
// available for logs via Unwrap; Error() carries only the safe message.
type Error struct {
	Category Category
	cause    error
}

// Wrap classifies err into a transport Error. A nil err stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err // already classified
	}
	return &Error{Category: Classify(err), cause: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", Message(e.Category), e.Category)
}

func (e *Error) Unwrap() error { return e.cause }
