package system

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/state"
)

const exportVersion = 1

// Envelope wraps an exported state snapshot.
type Envelope struct {
	ID         string          `json:"id"`
	App        string          `json:"app"`
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	State      json.RawMessage `json:"state"`
}

type ExportCmd struct {
	File string `arg:"" optional:"" help:"Output file. Defaults to stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	raw, err := state.Encode(svc.State())
	if err != nil {
		return err
	}
	env := Envelope{
		ID:         uuid.NewString(),
		App:        constants.AppName,
		Version:    exportVersion,
		ExportedAt: ctx.CurrentTime().UTC(),
		State:      raw,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if c.File == "" {
		ctx.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.File, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Exported to %s (id %s)", c.File, env.ID)))
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Export file to import."`
	Yes  bool   `help:"Replace the current state without asking." short:"y"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		return err
	}
	next, err := state.Decode(env.State)
	if err != nil {
		return fmt.Errorf("import %s: %w", env.ID, err)
	}

	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println(cli.Warning("This replaces all tracked days and plans with the imported state."))
		ctx.Printf("Import %s (exported %s)? [y/N]: ", env.ID, env.ExportedAt.Format(time.RFC3339))
		response, err := bufio.NewReader(ctx.Stdin()).ReadString('\n')
		if err != nil && response == "" {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	if err := svc.Import(next); err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("Imported %d day(s) from %s", len(next.Days), env.ID)))
	return nil
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("failed to parse import file: %w", err)
	}
	if env.App != constants.AppName {
		return env, fmt.Errorf("not a %s export (app %q)", constants.AppName, env.App)
	}
	if env.Version > exportVersion {
		return env, fmt.Errorf("export version %d is newer than supported version %d - please upgrade tally", env.Version, exportVersion)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		return env, fmt.Errorf("export id %q is not a UUID", env.ID)
	}
	if len(env.State) == 0 {
		return env, fmt.Errorf("export %s has no state", env.ID)
	}
	return env, nil
}
