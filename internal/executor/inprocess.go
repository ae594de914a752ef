package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
	"github.com/codewithboateng/doclint/internal/rules"
)

func (x *Executor) runInProcess(ctx context.Context, rule rules.Rule, files []string) (Output, error) {
	if rule.Check == nil {
		return Output{}, fmt.Errorf("%s: %w: in-process rule has no check", rule.ID, rules.ErrContract)
	}
	if x.Objects == nil || x.Settings == nil {
		return Output{}, fmt.Errorf("%s: executor has no object registry or settings", rule.ID)
	}

	q := docmodel.Query{
		Visibility:    x.Settings.Visibility(rule.ID),
		FileExcludes:  x.Settings.FileExcludes(rule.ID),
		FileSelection: files,
	}
	opts := x.Settings.For(rule.ID)

	var all protocol.Collector
	for _, e := range x.Objects.ObjectsForRule(q) {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		if !e.Locatable() {
			continue
		}
		// Each entity writes to its own collector so a failure drops only its lines.
		var c protocol.Collector
		if err := checkEntity(rule, e, opts, &c); err != nil {
			if errors.Is(err, rules.ErrContract) {
				return Output{}, err
			}
			x.log().Debugw("entity skipped", "rule", rule.ID, "object", e.Title(), "error", err)
			continue
		}
		all.Append(&c)
	}
	return Output{Stdout: all.String()}, nil
}

// checkEntity turns a panic in the check into a contract error.
func checkEntity(rule rules.Rule, e docmodel.Entity, opts rules.Options, c *protocol.Collector) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: %w: panic on %s: %v", rule.ID, rules.ErrContract, e.Title(), p)
		}
	}()
	return rule.Check(e, opts, c)
}
