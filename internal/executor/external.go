package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/rules"
)

const (
	scriptName   = "query.rb"
	fileListName = "files.lst"
)

func (x *Executor) runExternal(ctx context.Context, rule rules.Rule, files []string) (out Output, err error) {
	if strings.TrimSpace(rule.Query) == "" {
		return Output{}, fmt.Errorf("%s: %w: external rule has no query", rule.ID, rules.ErrContract)
	}
	if x.Runner == nil {
		return Output{}, fmt.Errorf("%s: executor has no command runner", rule.ID)
	}

	db, err := x.database(ctx, files)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", rule.ID, err)
	}

	work, err := os.MkdirTemp("", "doclint-query-")
	if err != nil {
		return Output{}, fmt.Errorf("%s: stage query: %w", rule.ID, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(work); rmErr != nil {
			x.log().Warnw("query staging dir not removed", "dir", work, "error", rmErr)
		}
	}()

	script := filepath.Join(work, scriptName)
	list := filepath.Join(work, fileListName)
	if err := os.WriteFile(script, []byte(rule.Query), 0o600); err != nil {
		return Output{}, fmt.Errorf("%s: stage query: %w", rule.ID, err)
	}
	if err := writeFileList(list, files); err != nil {
		return Output{}, fmt.Errorf("%s: stage file list: %w", rule.ID, err)
	}

	ruleFlags := strings.Fields(rule.Flags)
	var extra []string
	if x.Settings != nil {
		extra = x.Settings.EngineOptions(rule.ID)
		extra = append(extra, visibilityFlags(x.Settings.Visibility(rule.ID), ruleFlags, extra)...)
	}
	cmdline := x.Engine.QueryCommand(list, script, ruleFlags, extra, db)
	x.log().Debugw("running engine query", "rule", rule.ID, "files", len(files))

	out, err = x.Runner.Run(ctx, x.Engine.WorkDir, cmdline, isolatedEnv(x.Engine.ExtraEnv))
	if err != nil {
		return out, fmt.Errorf("%s: %w", rule.ID, err)
	}
	if out.Inconclusive() {
		x.log().Warnw("engine exited without output", "rule", rule.ID, "status", out.ExitStatus,
			"stderr", firstLine(out.Stderr))
	}
	return out, nil
}

// visibilityFlags returns the engine flags that widen the query to vis,
// leaving out any already passed.
func visibilityFlags(vis docmodel.Visibility, passed ...[]string) []string {
	var want []string
	switch vis {
	case docmodel.VisibilityAll, docmodel.VisibilityPrivate:
		want = []string{"--private", "--protected"}
	case docmodel.VisibilityProtected:
		want = []string{"--protected"}
	}
	var out []string
	for _, w := range want {
		if !hasFlag(w, passed...) {
			out = append(out, w)
		}
	}
	return out
}

func hasFlag(flag string, lists ...[]string) bool {
	for _, l := range lists {
		for _, f := range l {
			if f == flag {
				return true
			}
		}
	}
	return false
}

// QueryCommand composes
//
//	cat <list> | xargs -0 <engine> <sub> <queryflag> "$(cat <script>)" <flags> <opts> <dbflag> <db>
//
// with every path and flag quoted for sh.
func (e Engine) QueryCommand(list, script string, ruleFlags, engineOpts []string, db string) string {
	parts := []string{"cat", shellescape.Quote(list), "|", "xargs", "-0"}
	parts = append(parts, e.commandWords()...)
	parts = append(parts,
		shellescape.Quote(e.subcommand()),
		shellescape.Quote(e.queryFlag()), `"$(cat `+shellescape.Quote(script)+`)"`,
	)
	for _, f := range ruleFlags {
		parts = append(parts, shellescape.Quote(f))
	}
	for _, f := range engineOpts {
		parts = append(parts, shellescape.Quote(f))
	}
	if db != "" {
		parts = append(parts, shellescape.Quote(e.dbFlag()), shellescape.Quote(db))
	}
	return strings.Join(parts, " ")
}

// PrepareCommand builds the engine database for the listed files.
func (e Engine) PrepareCommand(list, db string) string {
	parts := []string{"cat", shellescape.Quote(list), "|", "xargs", "-0"}
	parts = append(parts, e.commandWords()...)
	parts = append(parts,
		shellescape.Quote(e.Prepare), shellescape.Quote(e.dbFlag()), shellescape.Quote(db), "--no-output")
	return strings.Join(parts, " ")
}

// commandWords splits a multi-word engine command ("bundle exec yard") and
// quotes each word.
func (e Engine) commandWords() []string {
	words := strings.Fields(orDefault(e.Command, "yard"))
	for i, w := range words {
		words[i] = shellescape.Quote(w)
	}
	return words
}

func (e Engine) subcommand() string { return orDefault(e.Subcommand, "list") }
func (e Engine) queryFlag() string  { return orDefault(e.QueryFlag, "--query") }
func (e Engine) dbFlag() string     { return orDefault(e.DBFlag, "-b") }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// writeFileList writes NUL-separated paths for xargs -0.
func writeFileList(path string, files []string) error {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(f)
		b.WriteByte(0)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
