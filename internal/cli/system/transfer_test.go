package system

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/cli/clitest"
	"github.com/julianstephens/tally/internal/models"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src, _ := clitest.NewContext(t, "2024-06-12", "tally.db")
	svc, err := src.Service()
	if err != nil {
		t.Fatalf("Service() failed: %v", err)
	}
	if err := svc.SetDayAnswer("2024-06-11", models.FieldDietException, models.Yes); err != nil {
		t.Fatal(err)
	}
	if err := svc.ReplaceWeekPlan("2024-06-09", []string{"2024-06-10", "2024-06-12"}); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(t.TempDir(), "export.json")
	if err := (&ExportCmd{File: file}).Run(src); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Errorf("export id %q is not a UUID", env.ID)
	}
	if env.App != "tally" || env.Version != exportVersion {
		t.Errorf("unexpected envelope header: %+v", env)
	}

	dst, out := clitest.NewContext(t, "2024-06-12", "other.json")
	if err := (&ImportCmd{File: file, Yes: true}).Run(dst); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 1 day(s)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	got, _ := dst.Service()
	s := got.State()
	if !s.Day("2024-06-11").DietException.IsYes() {
		t.Error("imported day lost its exception answer")
	}
	if s.WeekPlan("2024-06-09").Size() != 2 {
		t.Errorf("imported week plan = %v", s.WeekPlan("2024-06-09").Dates)
	}
}

func TestExportCmd_Stdout(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")
	if err := (&ExportCmd{}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out.String(), `"trackingStart"`) {
		t.Errorf("stdout export missing state:\n%s", out.String())
	}

	var env Envelope
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("stdout export is not an envelope: %v", err)
	}
	if want := "2024-06-12T09:30:00Z"; env.ExportedAt.Format(time.RFC3339) != want {
		t.Errorf("exportedAt = %s, want %s from the context clock", env.ExportedAt.Format(time.RFC3339), want)
	}
}

func TestImportCmd_Cancelled(t *testing.T) {
	src, _ := clitest.NewContext(t, "2024-06-12", "tally.json")
	file := filepath.Join(t.TempDir(), "export.json")
	if err := (&ExportCmd{File: file}).Run(src); err != nil {
		t.Fatal(err)
	}

	dst, out := clitest.NewContext(t, "2024-06-12", "other.json")
	dst.In = strings.NewReader("n\n")
	if err := (&ImportCmd{File: file}).Run(dst); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Import cancelled.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestImportCmd_RejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "nope"},
		{"wrong app", `{"id":"` + uuid.NewString() + `","app":"other","version":1,"state":{"trackingStart":"2024-06-01"}}`},
		{"newer version", `{"id":"` + uuid.NewString() + `","app":"tally","version":99,"state":{"trackingStart":"2024-06-01"}}`},
		{"bad id", `{"id":"abc","app":"tally","version":1,"state":{"trackingStart":"2024-06-01"}}`},
		{"no tracking start", `{"id":"` + uuid.NewString() + `","app":"tally","version":1,"state":{"days":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".json")
			if err := os.WriteFile(file, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")
			if err := (&ImportCmd{File: file, Yes: true}).Run(ctx); err == nil {
				t.Error("expected import to fail")
			}
		})
	}
}
