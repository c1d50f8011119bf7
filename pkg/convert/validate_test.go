package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/matzehuels/poetry2rye/pkg/errors"
)

func TestScanResidual(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "[project]\nname = \"demo\"\n\n[tool.other]\n  hint = \"use poetry run\"   \npoetry = true\n"
	if err := afero.WriteFile(fsys, "/p.toml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ScanResidual(fsys, "/p.toml", ResidualMarker)
	if err != nil {
		t.Fatalf("ScanResidual: %v", err)
	}
	want := []Warning{
		{Line: 5, Content: `hint = "use poetry run"`},
		{Line: 6, Content: "poetry = true"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
}

func TestScanResidualClean(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/p.toml", []byte("[project]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ScanResidual(fsys, "/p.toml", ResidualMarker)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no warnings", got)
	}
}

func TestScanResidualMissing(t *testing.T) {
	_, err := ScanResidual(afero.NewMemMapFs(), "/nope.toml", ResidualMarker)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeIO)
	}
}

func TestRemoveLock(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/proj", 0o755); err != nil {
		t.Fatal(err)
	}

	if _, removed, err := removeLock(fsys, "/proj"); err != nil || removed {
		t.Errorf("missing lock: removed=%v err=%v, want false, nil", removed, err)
	}

	if err := afero.WriteFile(fsys, "/proj/poetry.lock", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, removed, err := removeLock(fsys, "/proj")
	if err != nil || !removed {
		t.Fatalf("removed=%v err=%v, want true, nil", removed, err)
	}
	if ok, _ := afero.Exists(fsys, path); ok {
		t.Error("lock file still exists")
	}
}
