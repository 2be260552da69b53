package cli

import (
	"fmt"

	"github.com/julianstephens/tally/internal/gate"
)

type GateCmd struct{}

func (c *GateCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	req := svc.Gate()
	if !req.Blocking() {
		ctx.Println(Success(req.Message()))
		return nil
	}
	ctx.Println(Warning(fmt.Sprintf("%s: %s", req.Kind, req.Message())))
	ctx.Println(Muted(NextStep(req)))
	return nil
}

// NextStep names the command that clears req.
func NextStep(req gate.Requirement) string {
	switch req.Kind {
	case gate.MonthPlanRequired:
		return fmt.Sprintf("Run 'tally plan month set START' then 'tally plan month confirm --month %s'.", req.Key)
	case gate.WeekPlanRequired:
		return fmt.Sprintf("Run 'tally plan week set DATES... --week %s' then 'tally plan week confirm --week %s'.", req.Key, req.Key)
	case gate.PreviousDayRequired:
		return fmt.Sprintf("Run 'tally day edit --date %s'.", req.Key)
	}
	return ""
}
