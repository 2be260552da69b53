package system

import (
	"strings"
	"testing"

	"github.com/julianstephens/tally/internal/cli/clitest"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.db")

	// Should pass all checks (missing backups is only a warning)
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected backup warning:\n%s", out.String())
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.db")

	if _, err := ctx.BackupManager().CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups OK:\n%s", out.String())
	}
}

func TestDoctorCmd_JSONStore(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on JSON store: %v\n%s", err, out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.db")

	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestDoctorCmd_UnreadableState(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.db")
	if err := ctx.Store.Put(constants.StateKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail on unreadable state")
	}
	if !strings.Contains(out.String(), "❌ State readable: FAIL") {
		t.Errorf("expected state failure:\n%s", out.String())
	}
}

func TestDoctorCmd_Conflicts(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")
	svc, err := ctx.Service()
	if err != nil {
		t.Fatal(err)
	}
	for _, date := range []string{"2024-06-10", "2024-06-11"} {
		if err := svc.SetDayAnswer(date, models.FieldDessertPass, models.Yes); err != nil {
			t.Fatal(err)
		}
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail when conflicts exist")
	}
	if !strings.Contains(out.String(), "conflict(s) found") {
		t.Errorf("expected conflict report:\n%s", out.String())
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.db")

	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
		t.Fatal(err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("expected incomplete migrations error")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("checkClockTimezone() failed: %v", err)
	}

	ctx.Config.Timezone = "Mars/Olympus"
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("invalid timezone should fail")
	}
}
