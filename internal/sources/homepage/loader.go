// Package homepage imports links from Homepage dashboard files
// (bookmarks.yaml and services.yaml).
package homepage

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Kind is the Homepage file format.
type Kind string

const (
	KindBookmarks Kind = "bookmarks"
	KindServices  Kind = "services"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage file from disk
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// LoadBookmarks parses the file as bookmarks.yaml
func (l *Loader) LoadBookmarks() (BookmarksConfig, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	return config, nil
}

// LoadServices parses the file as services.yaml
func (l *Loader) LoadServices() (ServicesConfig, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}

	var config ServicesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse services yaml: %w", err)
	}
	return config, nil
}

// Detect guesses the format: bookmark entries are lists, service
// entries are mappings.
func (l *Loader) Detect() (Kind, error) {
	if _, err := l.LoadBookmarks(); err == nil {
		return KindBookmarks, nil
	}
	if _, err := l.LoadServices(); err == nil {
		return KindServices, nil
	}
	return "", fmt.Errorf("%s is neither a Homepage bookmarks nor services file", l.filePath)
}

func (l *Loader) read() ([]byte, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("homepage file %s is empty", l.filePath)
	}
	return stripTemplateVariables(data), nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
