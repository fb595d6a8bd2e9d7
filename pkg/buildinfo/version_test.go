package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), "version: ") {
		t.Errorf("String() = %q", String())
	}
}

func TestCacheScope(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if got := CacheScope(); got != "v1.2.3:" {
		t.Errorf("CacheScope() = %q", got)
	}
	Version = "dev"
	if got := CacheScope(); !strings.HasPrefix(got, "dev-") {
		t.Errorf("CacheScope() = %q", got)
	}
}
