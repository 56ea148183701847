package homepage

// ServicesConfig represents the top-level structure of services.yaml
// Homepage uses dynamic keys, so we parse as []map[string][]map[string]ServiceProps
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps contains the service properties an import cares about
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BookmarkEntry represents a single bookmark entry in the YAML
type BookmarkEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// BookmarkCategory represents a category with its bookmarks
// The YAML structure is: - CategoryName: { - BookmarkName: [{ icon, abbr, href }] }
type BookmarkCategory map[string][]map[string][]BookmarkEntry

// BookmarksConfig is the root structure for bookmarks.yaml
type BookmarksConfig []BookmarkCategory
