package homepage

import (
	"testing"
)

func TestMapperMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": {
				{"Github": {{Abbr: "GH", Href: "https://github.com/"}}},
				{"Go docs": {{Abbr: "GO", Href: "https://go.dev/doc/"}}},
				{"Mirror": {{Abbr: "GH", Href: "https://github.com/"}}},
			},
		},
		{
			"Social": {
				{"Reddit": {{Abbr: "RE", Href: ""}}},
				{"Gopher": {{Abbr: "FT", Href: "ftp://gopher.example.com"}}},
				{"Empty": {}},
			},
		},
	}

	links, err := NewMapper().MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("MapBookmarks() returned %d links, want 2: %+v", len(links), links)
	}
	if links[0].Title != "Developer / Github" || links[0].URL != "https://github.com/" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Title != "Developer / Go docs" {
		t.Errorf("links[1] = %+v", links[1])
	}
}

func TestMapperMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{"AdGuard Home": {Href: "https://adguard.domain.ext"}},
				{"Traefik": {Href: "https://traefik.domain.ext"}},
				{"No link": {Description: "skipped"}},
			},
		},
	}

	links, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("MapServices() returned %d links, want 2", len(links))
	}
	if links[0].Title != "Infrastructure / AdGuard Home" {
		t.Errorf("links[0].Title = %q", links[0].Title)
	}
}

func TestMapperEmptyConfig(t *testing.T) {
	mapper := NewMapper()

	if _, err := mapper.MapBookmarks(BookmarksConfig{}); err == nil {
		t.Error("MapBookmarks() should fail on an empty config")
	}
	if _, err := mapper.MapServices(ServicesConfig{}); err == nil {
		t.Error("MapServices() should fail on an empty config")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		group, name, want string
	}{
		{"Dev", "Github", "Dev / Github"},
		{"", "Github", "Github"},
		{"Dev", " ", "Dev"},
	}

	for _, tt := range tests {
		if got := title(tt.group, tt.name); got != tt.want {
			t.Errorf("title(%q, %q) = %q, want %q", tt.group, tt.name, got, tt.want)
		}
	}
}
