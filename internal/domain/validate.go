package domain

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const minURLLength = 10

// ValidateURL checks the hyperlink rules: non-empty, http(s) scheme,
// longer than the bare scheme. The input is expected to be trimmed.
func ValidateURL(url string) error {
	if url == "" {
		return fmt.Errorf("%w: a hyperlink is required", ErrValidation)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: hyperlink must start with http:// or https://", ErrValidation)
	}
	if len(url) < minURLLength {
		return fmt.Errorf("%w: hyperlink %q is too short", ErrValidation, url)
	}
	return nil
}

// NewID returns a client-generated identifier that is unique
// without a round trip to the remote store.
func NewID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate hyperlink id: %w", err)
	}
	return id, nil
}

// Build turns user input into a fresh dirty record owned by owner.
func (n NewHyperlink) Build(owner string, now time.Time) (Hyperlink, error) {
	url := strings.TrimSpace(n.URL)
	if err := ValidateURL(url); err != nil {
		return Hyperlink{}, err
	}

	id, err := NewID()
	if err != nil {
		return Hyperlink{}, err
	}

	now = now.UTC()
	return Hyperlink{
		ID:        id,
		URL:       url,
		Title:     strings.TrimSpace(n.Title),
		CreatedOn: now,
		UpdatedOn: now,
		Owner:     owner,
		Dirty:     true,
	}, nil
}
