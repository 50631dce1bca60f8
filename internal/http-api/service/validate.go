package service

import (
	"regexp"
	"strings"
	"time"
)

const (
	scoreMin = 1
	scoreMax = 10

	usernameMaxLength = 150
	slugMaxLength     = 50
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// validateUsername enforces the restricted character set and the
// reserved value "me" (which the /users/me route claims).
func validateUsername(username string) error {
	if username == "" {
		return validationErrorf("username", "must not be empty")
	}
	if len(username) > usernameMaxLength {
		return validationErrorf("username", "must be at most %d characters", usernameMaxLength)
	}
	if strings.EqualFold(username, "me") {
		return validationErrorf("username", "%q is not allowed", username)
	}
	if !usernameRegex.MatchString(username) {
		return validationErrorf("username", "contains forbidden characters")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return validationErrorf("slug", "must not be empty")
	}
	if len(slug) > slugMaxLength {
		return validationErrorf("slug", "must be at most %d characters", slugMaxLength)
	}
	if !slugRegex.MatchString(slug) {
		return validationErrorf("slug", "must contain only letters, digits, hyphens and underscores")
	}
	return nil
}

func validateScore(score int) error {
	if score < scoreMin || score > scoreMax {
		return validationErrorf("score", "must be between %d and %d", scoreMin, scoreMax)
	}
	return nil
}

func validateYear(year int) error {
	if year < 0 {
		return validationErrorf("year", "must not be negative")
	}
	if current := time.Now().Year(); year > current {
		return validationErrorf("year", "must not exceed %d", current)
	}
	return nil
}

func validateRole(role string) error {
	switch role {
	case "user", "moderator", "admin":
		return nil
	}
	return validationErrorf("role", "must be one of user, moderator, admin")
}
