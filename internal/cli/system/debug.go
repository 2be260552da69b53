package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/evaluator"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show the store path and kind."`
	DumpState *DebugDumpStateCmd `cmd:"" help:"Dump the whole state as JSON."`
	DumpDay   *DebugDumpDayCmd   `cmd:"" help:"Dump one day record as JSON."`
	DumpKeys  *DebugDumpKeysCmd  `cmd:"" help:"List the keys held by the store."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
		"kind": string(ctx.Config.Kind()),
	})
}

type DebugDumpStateCmd struct{}

func (cmd *DebugDumpStateCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	return printJSON(ctx, svc.State())
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date of the day to dump (YYYY-MM-DD, defaults to today)."`
}

// dayDump pairs the stored record with what the rules derive from it.
type dayDump struct {
	Record      any      `json:"record"`
	Recorded    bool     `json:"recorded"`
	LiftingDay  bool     `json:"liftingDay"`
	FastDay     bool     `json:"fastDay"`
	Complete    bool     `json:"complete"`
	MissingItem []string `json:"missingItems"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	date, err := cli.ResolveDate(svc, cmd.Date)
	if err != nil {
		return err
	}

	s := svc.State()
	missing := []string{}
	for _, item := range svc.MissingItems(date) {
		missing = append(missing, item.String())
	}
	return printJSON(ctx, dayDump{
		Record:      s.Day(date),
		Recorded:    s.HasDay(date),
		LiftingDay:  evaluator.IsLiftingDay(s, date),
		FastDay:     evaluator.IsFastDay(s, date),
		Complete:    len(missing) == 0,
		MissingItem: missing,
	})
}

type DebugDumpKeysCmd struct {
	Prefix string `arg:"" optional:"" help:"Only list keys with this prefix."`
}

func (cmd *DebugDumpKeysCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	keys, err := ctx.Store.Keys(cmd.Prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return printJSON(ctx, keys)
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
