package days

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/gate"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/tracker"
)

const (
	choiceSkip   = ""
	choiceYes    = "yes"
	choiceNo     = "no"
	choiceMissed = "missed"
)

type DayEditCmd struct {
	Date string `help:"Date (YYYY-MM-DD). Defaults to the day the gate is waiting on, else today." short:"d"`
}

func (c *DayEditCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		if req := svc.Gate(); req.Kind == gate.PreviousDayRequired {
			date = req.Key
		}
	}
	date, err = cli.ResolveDate(svc, date)
	if err != nil {
		return err
	}

	missing := svc.MissingItems(date)
	if len(missing) == 0 {
		ctx.Println(cli.Success(date + " is already complete"))
		return nil
	}

	answers := NewAnswers(missing)
	form := answers.Form(date)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			ctx.Println("Edit cancelled.")
			return nil
		}
		return err
	}

	applied, err := answers.Apply(svc, date)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("Saved %d answer(s) for %s", applied, date)))
	ctx.Println(FormatDay(svc.State(), date, ctx.Config.RollingWindow))
	return nil
}

// Answers holds the form input for each outstanding item. Empty values are skipped.
type Answers struct {
	Items  []evaluator.Item
	Values []string
}

func NewAnswers(items []evaluator.Item) *Answers {
	return &Answers{Items: items, Values: make([]string, len(items))}
}

// dependsOnException marks the diet rules and passes, which an exception
// day makes irrelevant.
func dependsOnException(item evaluator.Item) bool {
	return item.Rule != nil ||
		item.Field == models.FieldDessertPass ||
		item.Field == models.FieldMealPass
}

// exceptionChosen reports whether this form answers the exception question Yes.
func (a *Answers) exceptionChosen() bool {
	for i, item := range a.Items {
		if item.Field == models.FieldDietException && a.Values[i] == choiceYes {
			return true
		}
	}
	return false
}

func (a *Answers) field(i int) huh.Field {
	item := a.Items[i]
	if item.Slot != "" {
		return huh.NewInput().
			Title(item.String()).
			Description("Weight, \"missed\", or empty to skip").
			Value(&a.Values[i])
	}
	return huh.NewSelect[string]().
		Title(item.String()).
		Options(
			huh.NewOption("Skip", choiceSkip),
			huh.NewOption("Yes", choiceYes),
			huh.NewOption("No", choiceNo),
		).
		Value(&a.Values[i])
}

// Form builds one huh field per outstanding item. The diet rules and passes
// sit in their own group, hidden once the exception question is answered Yes.
func (a *Answers) Form(date string) *huh.Form {
	var general, diet []huh.Field
	for i, item := range a.Items {
		if dependsOnException(item) {
			diet = append(diet, a.field(i))
		} else {
			general = append(general, a.field(i))
		}
	}

	var groups []*huh.Group
	if len(general) > 0 {
		groups = append(groups, huh.NewGroup(general...).Title(date))
	}
	if len(diet) > 0 {
		groups = append(groups, huh.NewGroup(diet...).
			Title(date+" diet").
			WithHideFunc(a.exceptionChosen))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// Apply records every non-empty answer and returns how many were saved.
// Diet rule and pass answers are dropped when the exception is chosen.
func (a *Answers) Apply(svc *tracker.Service, date string) (int, error) {
	exception := a.exceptionChosen()
	applied := 0
	for i, item := range a.Items {
		value := a.Values[i]
		if value == choiceSkip || (exception && dependsOnException(item)) {
			continue
		}

		var err error
		switch {
		case item.Slot != "" && value == choiceMissed:
			if !svc.State().Day(date).Missed(item.Slot) {
				err = svc.ToggleWeightMissed(date, item.Slot)
			}
		case item.Slot != "":
			w := tracker.ParseWeight(value)
			if w == nil {
				continue
			}
			err = svc.SetWeight(date, item.Slot, w)
		case item.Rule != nil:
			err = svc.SetDietAnswer(date, *item.Rule, answerOf(value))
		default:
			err = svc.SetDayAnswer(date, item.Field, answerOf(value))
		}
		if err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func answerOf(choice string) models.Answer {
	return models.AnswerOf(choice == choiceYes)
}
