package daemon

import (
	"strings"
	"testing"
)

func TestRenderUnit(t *testing.T) {
	unit := RenderUnit("/usr/local/bin/tscal", "/etc/tscal.json", "/run/tscal.sock")

	want := "ExecStart=/usr/local/bin/tscal daemon --config /etc/tscal.json --daemon-socket /run/tscal.sock\n"
	if !strings.Contains(unit, want) {
		t.Fatalf("unit missing %q:\n%s", want, unit)
	}
	if strings.Contains(unit, "/path/to/") {
		t.Fatalf("unit still has placeholders:\n%s", unit)
	}
}
