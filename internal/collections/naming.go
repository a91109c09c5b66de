// Package collections provides collection naming for mindmirror.
//
// Collection names follow two formats:
//
//	{tradition}_knowledge            shared knowledge documents
//	{tradition}_{user_id}_personal   private journal content per user
//
// The underscore is the reserved separator. Traditions and user IDs are
// restricted to lowercase alphanumerics and hyphens so that every valid
// input pair maps to exactly one name and every name parses back to
// exactly one input pair.
//
// Example:
//
//	name, err := collections.Knowledge("stoicism")
//	// Result: "stoicism_knowledge"
//
//	name, err := collections.Personal("stoicism", "user-42")
//	// Result: "stoicism_user-42_personal"
package collections

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidIdentifier indicates an empty or malformed tradition or user ID.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidCollectionName indicates a malformed collection name.
	ErrInvalidCollectionName = errors.New("invalid collection name format")
)

const (
	knowledgeSuffix = "knowledge"
	personalSuffix  = "personal"
)

// identifierPattern restricts traditions and user IDs to lowercase
// alphanumerics and hyphens, 1-48 characters, starting alphanumeric.
// Underscores are excluded because they are the name separator.
var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,47}$`)

// ValidateIdentifier validates a tradition or user ID for use in collection
// names. Returns ErrInvalidIdentifier for empty strings, underscores,
// uppercase, or other characters outside [a-z0-9-].
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("%w: identifier required", ErrInvalidIdentifier)
	}
	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("%w: must match ^[a-z0-9][a-z0-9-]{0,47}$, got %q", ErrInvalidIdentifier, id)
	}
	return nil
}

// Knowledge returns the shared knowledge collection name for a tradition.
//
// Example:
//
//	name, err := Knowledge("stoicism")
//	// Result: "stoicism_knowledge"
func Knowledge(tradition string) (string, error) {
	if err := ValidateIdentifier(tradition); err != nil {
		return "", fmt.Errorf("tradition: %w", err)
	}
	return fmt.Sprintf("%s_%s", tradition, knowledgeSuffix), nil
}

// Personal returns the private journal collection name for a
// (tradition, user) pair.
//
// Example:
//
//	name, err := Personal("stoicism", "user-42")
//	// Result: "stoicism_user-42_personal"
func Personal(tradition, userID string) (string, error) {
	if err := ValidateIdentifier(tradition); err != nil {
		return "", fmt.Errorf("tradition: %w", err)
	}
	if err := ValidateIdentifier(userID); err != nil {
		return "", fmt.Errorf("user ID: %w", err)
	}
	return fmt.Sprintf("%s_%s_%s", tradition, userID, personalSuffix), nil
}

// Kind classifies a parsed collection name.
type Kind string

const (
	// KindKnowledge is a shared per-tradition knowledge collection.
	KindKnowledge Kind = "knowledge"
	// KindPersonal is a private per-(tradition, user) journal collection.
	KindPersonal Kind = "personal"
)

// Parse parses a collection name into its components.
//
// It returns the kind, tradition, and (for personal collections) user ID.
// The name must have been produced by Knowledge or Personal; anything else
// returns ErrInvalidCollectionName.
//
// Example:
//
//	kind, tradition, userID, err := Parse("stoicism_user-42_personal")
//	// kind = KindPersonal, tradition = "stoicism", userID = "user-42"
func Parse(name string) (Kind, string, string, error) {
	if name == "" {
		return "", "", "", fmt.Errorf("%w: collection name required", ErrInvalidCollectionName)
	}

	parts := strings.Split(name, "_")
	switch {
	case len(parts) == 2 && parts[1] == knowledgeSuffix:
		if err := ValidateIdentifier(parts[0]); err != nil {
			return "", "", "", fmt.Errorf("%w: bad tradition %q", ErrInvalidCollectionName, parts[0])
		}
		return KindKnowledge, parts[0], "", nil
	case len(parts) == 3 && parts[2] == personalSuffix:
		if err := ValidateIdentifier(parts[0]); err != nil {
			return "", "", "", fmt.Errorf("%w: bad tradition %q", ErrInvalidCollectionName, parts[0])
		}
		if err := ValidateIdentifier(parts[1]); err != nil {
			return "", "", "", fmt.Errorf("%w: bad user ID %q", ErrInvalidCollectionName, parts[1])
		}
		return KindPersonal, parts[0], parts[1], nil
	default:
		return "", "", "", fmt.Errorf("%w: expected {tradition}_knowledge or {tradition}_{user}_personal, got %q", ErrInvalidCollectionName, name)
	}
}
