package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 generation fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	PortfolioID ID
	RecordID    ID
)

func (id PortfolioID) String() string { return ID(id).String() }
func (id RecordID) String() string    { return ID(id).String() }

// NewPortfolioID creates a new portfolio identifier
func NewPortfolioID() PortfolioID { return PortfolioID(NewID()) }

// ParsePortfolioID parses a string into PortfolioID
func ParsePortfolioID(s string) (PortfolioID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("portfolio ID cannot be empty")
	}
	return PortfolioID(s), nil
}

// ParseID parses a non-empty identifier
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	return ID(s), nil
}
