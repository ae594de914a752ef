// Package executor runs one rule with its declared strategy and returns the
// rule's raw protocol text.
package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/rules"
	"github.com/codewithboateng/doclint/internal/shared"
)

// Output is the three-way result of a rule run. A non-zero ExitStatus is
// information for the caller, not an error.
type Output struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Inconclusive reports a failed run that produced nothing to parse.
func (o Output) Inconclusive() bool {
	return o.ExitStatus != 0 && o.Stdout == ""
}

// Settings is the slice of resolved configuration the executor reads.
type Settings interface {
	Visibility(ruleID string) docmodel.Visibility
	FileExcludes(ruleID string) []string
	EngineOptions(ruleID string) []string
	For(ruleID string) rules.Options
}

// Engine describes the external documentation engine.
type Engine struct {
	Command    string // "yard"
	Subcommand string // query subcommand, "list"
	QueryFlag  string // "--query"
	DBFlag     string // "-b"
	DBDir      string // base dir for prepared databases; temp when empty
	Prepare    string // subcommand that builds the database; skipped when empty
	WorkDir    string
	ExtraEnv   map[string]string
}

type Executor struct {
	Objects  docmodel.ObjectRegistry
	Settings Settings
	Engine   Engine
	Runner   CommandRunner
	DBs      *DBCache
	Logger   *zap.SugaredLogger
}

// New wires an executor with the shell runner and a fresh database cache.
func New(objects docmodel.ObjectRegistry, settings Settings, engine Engine, logger *zap.SugaredLogger) (*Executor, error) {
	logger = shared.OrNop(logger)
	dbs, err := NewDBCache(defaultDBCacheSize, logger)
	if err != nil {
		return nil, err
	}
	return &Executor{
		Objects:  objects,
		Settings: settings,
		Engine:   engine,
		Runner:   ShellRunner{},
		DBs:      dbs,
		Logger:   logger,
	}, nil
}

// Execute runs rule against files. files == nil means every known file.
func (x *Executor) Execute(ctx context.Context, rule rules.Rule, files []string) (Output, error) {
	switch rule.Strategy {
	case rules.StrategyInProcess:
		return x.runInProcess(ctx, rule, files)
	case rules.StrategyExternal:
		return x.runExternal(ctx, rule, files)
	}
	return Output{}, fmt.Errorf("%s: %w: unknown strategy %d", rule.ID, rules.ErrContract, rule.Strategy)
}

func (x *Executor) log() *zap.SugaredLogger { return shared.OrNop(x.Logger) }
