package banner

import (
	"strings"
	"testing"
)

func TestBanner(t *testing.T) {
	got := Banner("v1.2.3")
	if !strings.Contains(got, "v1.2.3") {
		t.Errorf("banner does not contain version: %q", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Error("banner should end with a blank line")
	}
}
