package homepage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// Mapper converts Homepage entries to hyperlink inputs
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks turns every bookmark with a valid href into a hyperlink
// titled "<category> / <name>". Duplicate hrefs are kept once.
func (m *Mapper) MapBookmarks(config BookmarksConfig) ([]domain.NewHyperlink, error) {
	var out []domain.NewHyperlink
	seen := map[string]bool{}

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[bookmarkName]
					if len(entries) == 0 {
						continue
					}
					// Each bookmark has a list with a single entry
					entry := entries[0]

					name := bookmarkName
					if name == "" {
						name = entry.Abbr
					}
					out = appendLink(out, seen, entry.Href, title(categoryName, name))
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config")
	}
	return out, nil
}

// MapServices turns every service with a valid href into a hyperlink
// titled "<group> / <service>".
func (m *Mapper) MapServices(config ServicesConfig) ([]domain.NewHyperlink, error) {
	var out []domain.NewHyperlink
	seen := map[string]bool{}

	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					out = appendLink(out, seen, serviceMap[serviceName].Href, title(groupName, serviceName))
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid services found in config")
	}
	return out, nil
}

func appendLink(out []domain.NewHyperlink, seen map[string]bool, href, title string) []domain.NewHyperlink {
	href = strings.TrimSpace(href)
	if domain.ValidateURL(href) != nil || seen[href] {
		return out
	}
	seen[href] = true
	return append(out, domain.NewHyperlink{URL: href, Title: title})
}

func title(group, name string) string {
	group, name = strings.TrimSpace(group), strings.TrimSpace(name)
	switch {
	case group == "":
		return name
	case name == "":
		return group
	default:
		return group + " / " + name
	}
}

// sortedKeys keeps the import order stable, YAML maps have none.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
