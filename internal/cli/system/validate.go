package system

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Apply automatic fixes where the repair is unambiguous."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	result := validation.Validate(svc.State())
	if !result.HasConflicts() {
		ctx.Println(cli.Success("No conflicts detected"))
		return nil
	}
	ctx.Printf("%s", result.FormatReport())

	if !c.Fix {
		return nil
	}

	fixes, err := svc.Repair()
	if err != nil {
		return fmt.Errorf("failed to apply fixes: %w", err)
	}
	if len(fixes) == 0 {
		ctx.Println("No automatic fixes available; the remaining conflicts need manual review.")
		return nil
	}
	ctx.Println()
	for _, fix := range fixes {
		ctx.Println(cli.Success(fix.Action))
	}

	remaining := validation.Validate(svc.State())
	if remaining.HasConflicts() {
		ctx.Printf("%d conflict(s) need manual review.\n", len(remaining.Conflicts))
	}
	return nil
}
