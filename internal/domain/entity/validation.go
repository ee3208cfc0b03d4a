package entity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MinTitleLength is the shortest title accepted by the write form.
const MinTitleLength = 3

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ValidateNotionID checks that id is a Notion page id, either dashed UUID or 32 hex characters.
func ValidateNotionID(id string) error {
	if id == "" {
		return &ValidationError{Field: "itemId", Message: "item id is required"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "itemId", Message: "must be a Notion page id"}
	}
	return nil
}

// NormalizeNotionID returns the dashed form of a Notion id.
// Invalid ids are returned unchanged.
func NormalizeNotionID(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}

// ValidateTitle checks that a search title has at least MinTitleLength characters.
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < MinTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must be at least %d characters", MinTitleLength),
		}
	}
	return nil
}

// ValidateYear checks an optional release year. An empty year is valid.
func ValidateYear(year string) error {
	if year == "" {
		return nil
	}
	if !yearPattern.MatchString(year) {
		return &ValidationError{Field: "year", Message: "must be a 4 digit year"}
	}
	return nil
}
