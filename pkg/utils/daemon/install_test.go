package daemon

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUnitPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := UnitPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "systemd", "user", "rootstatus.service"); got != want {
		t.Errorf("UnitPath() = %q, want %q", got, want)
	}
}

func TestRenderUnit(t *testing.T) {
	unit := RenderUnit("/usr/local/bin/rootstatus")

	if !strings.Contains(unit, "ExecStart=/usr/local/bin/rootstatus daemon\n") {
		t.Errorf("unit has no ExecStart for the binary:\n%s", unit)
	}
	if strings.Contains(unit, "/path/to/rootstatus") {
		t.Errorf("template placeholder left in unit:\n%s", unit)
	}
}

func TestUninstallWithoutUnit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Uninstall(); err != nil {
		t.Errorf("Uninstall() error = %v, want nil", err)
	}
}
