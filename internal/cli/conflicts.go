package cli

import (
	"fmt"

	"github.com/julianstephens/tally/internal/models"
)

// ConflictsCmd reports, for each pass, another day in the date's week that
// already used it.
type ConflictsCmd struct {
	Date string `help:"Date to check (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *ConflictsCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	date, err := ResolveDate(svc, c.Date)
	if err != nil {
		return err
	}

	found := false
	for _, kind := range []models.PassKind{models.DessertPass, models.MealPass} {
		if other, ok := svc.PassConflict(date, kind); ok {
			found = true
			ctx.Println(Warning(fmt.Sprintf("%s pass on %s conflicts with %s", passLabel(kind), date, other)))
		}
	}
	if !found {
		ctx.Println(Success("No pass conflicts on " + date))
	}
	return nil
}

func passLabel(kind models.PassKind) string {
	if kind == models.DessertPass {
		return "Dessert"
	}
	return "Meal"
}
