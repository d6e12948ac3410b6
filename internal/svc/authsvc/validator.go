package authsvc

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

const (
	// MaxUsernameLength is the maximum username length in characters.
	MaxUsernameLength = 64
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72

	maxBodyBytes = 1 << 16

	locationBody = "body"
	fieldBody    = "body"
	fieldUser    = "username"
	fieldPass    = "password"
)

// Credentials is the request body of register and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DecodeCredentials parses and validates a credentials body.
// It returns a *domain.ValidationError describing every offending field.
func DecodeCredentials(body io.Reader) (Credentials, error) {
	var (
		raw  map[string]any
		verr domain.ValidationError
	)

	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		verr.Add(locationBody, fieldBody, "request body must be a JSON object")

		return Credentials{}, &verr
	}

	creds := Credentials{
		Username: validateUsername(&verr, raw[fieldUser]),
		Password: validatePassword(&verr, raw[fieldPass]),
	}

	if !verr.Empty() {
		return Credentials{}, &verr
	}

	return creds, nil
}

func validateUsername(verr *domain.ValidationError, value any) string {
	username, ok := value.(string)

	switch {
	case value == nil || username == "" && ok:
		verr.Add(locationBody, fieldUser, "username is required")
	case !ok:
		verr.Add(locationBody, fieldUser, "username must be a string")
	case !utf8.ValidString(username):
		verr.Add(locationBody, fieldUser, "username must be valid UTF-8")
	case strings.TrimSpace(username) != username:
		verr.Add(locationBody, fieldUser, "username must not start or end with whitespace")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		verr.Add(locationBody, fieldUser, "username must be at most 64 characters")
	}

	return username
}

func validatePassword(verr *domain.ValidationError, value any) string {
	password, ok := value.(string)

	switch {
	case value == nil || password == "" && ok:
		verr.Add(locationBody, fieldPass, "password is required")
	case !ok:
		verr.Add(locationBody, fieldPass, "password must be a string")
	case len(password) > MaxPasswordBytes:
		verr.Add(locationBody, fieldPass, "password must be at most 72 bytes")
	}

	return password
}

// AsValidationError unwraps a *domain.ValidationError from err.
func AsValidationError(err error) (*domain.ValidationError, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}

	return nil, false
}
