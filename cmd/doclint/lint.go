package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/doclint/internal/artifact"
	"github.com/codewithboateng/doclint/internal/coverage"
	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/executor"
	"github.com/codewithboateng/doclint/internal/lint"
	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/reporting"
)

type lintFlags struct {
	graph   string
	formats string
	outDir  string
	save    bool
	publish bool
}

func newLintCmd(a *app) *cobra.Command {
	f := &lintFlags{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint documentation of the given paths (default: current directory)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.lint(ctx, cmd, f, args)
		},
	}
	cmd.Flags().StringVar(&f.graph, "graph", ".doclint/graph.json", "documentation graph dump (file or directory)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "comma-separated report formats: json,text,html,sarif")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "report output directory")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the run in the database")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "upload written reports to object storage")
	return cmd
}

func (a *app) lint(ctx context.Context, cmd *cobra.Command, f *lintFlags, paths []string) error {
	started := time.Now()
	res, err := a.resolver()
	if err != nil {
		return err
	}

	graph, diags, err := docmodel.Load(f.graph)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	for _, w := range diags.Warnings {
		a.logger.Warnw("graph", "warning", w)
	}
	objects := docmodel.NewRegistry(graph.Entities)

	files, err := a.discover(paths, res.GlobalExcludes())
	if err != nil {
		return err
	}
	a.logger.Infow("lint starting", "files", len(files), "objects", objects.Len())

	exec, err := executor.New(objects, res, executor.Engine{
		Command:    a.cfg.Engine.Command,
		Subcommand: a.cfg.Engine.Subcommand,
		QueryFlag:  a.cfg.Engine.QueryFlag,
		DBFlag:     a.cfg.Engine.DBFlag,
		DBDir:      a.cfg.Engine.DBDir,
		Prepare:    a.cfg.Engine.Prepare,
		ExtraEnv:   a.cfg.Engine.ExtraEnv,
	}, a.logger)
	if err != nil {
		return err
	}

	runner := &lint.Runner{
		Resolver:    res,
		Executor:    exec,
		Coverage:    coverage.Calculator{Objects: objects, Excludes: res.GlobalExcludes()},
		Policy:      lint.PolicyFrom(res),
		Parallelism: a.cfg.Engine.Parallelism,
		Logger:      a.logger,
	}
	rep, err := runner.Run(ctx, files)
	if err != nil {
		a.logger.Errorw("lint aborted", "error", err)
		return exitCode(2)
	}

	run := report.NewRun(rep, strings.Join(paths, ","), res.FailOnSeverity(), started)
	if err := reporting.RenderText(cmd.OutOrStdout(), run); err != nil {
		return err
	}

	written, err := a.writeReports(f, run)
	if err != nil {
		return err
	}
	if f.save {
		if err := a.save(run); err != nil {
			return err
		}
	}
	if f.publish && len(written) > 0 {
		if err := a.publish(ctx, run.ID, written); err != nil {
			return err
		}
	}

	a.logger.Infow("lint finished", "run", run.ID, "exit_code", run.ExitCode,
		"duration", time.Since(started).Round(time.Millisecond))
	if run.ExitCode != 0 {
		return exitCode(run.ExitCode)
	}
	return nil
}

// discover lists candidate files under paths, minus global excludes.
func (a *app) discover(paths, excludes []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files := []string{}
	for _, p := range paths {
		found, err := docmodel.DiscoverFiles(p, a.cfg.Engine.Extensions)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", p, err)
		}
		for _, file := range found {
			if !docmodel.Excluded(file, excludes) {
				files = append(files, file)
			}
		}
	}
	return files, nil
}

func (a *app) writeReports(f *lintFlags, run *report.Run) ([]string, error) {
	outDir := f.outDir
	if outDir == "" {
		outDir = a.cfg.Reporting.OutDir
	}
	formats := a.cfg.Reporting.Formats
	if f.formats != "" {
		formats = strings.Split(f.formats, ",")
	}

	var written []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			path, err = reporting.WriteJSON(outDir, run)
		case "text":
			path, err = reporting.WriteText(outDir, run)
		case "html":
			path, err = reporting.WriteHTML(outDir, run)
		case "sarif":
			path, err = reporting.WriteSARIF(outDir, run)
		case "":
			continue
		default:
			return written, fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return written, fmt.Errorf("write %s report: %w", format, err)
		}
		a.logger.Debugw("report written", "format", format, "path", path)
		written = append(written, path)
	}
	return written, nil
}

func (a *app) save(run *report.Run) error {
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveRun(run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	a.logger.Infow("run saved", "run", run.ID, "driver", db.Driver())
	return nil
}

func (a *app) publish(ctx context.Context, runID string, files []string) error {
	c := a.cfg.Artifact
	pub, err := artifact.NewS3Publisher(artifact.S3Config{
		Endpoint:  c.Endpoint,
		Region:    c.Region,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Bucket:    c.Bucket,
		Prefix:    c.Prefix,
		UseSSL:    c.UseSSL,
	})
	if err != nil {
		return err
	}
	keys, err := artifact.PublishFiles(ctx, pub, runID, files)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	a.logger.Infow("reports published", "bucket", c.Bucket, "objects", keys)
	return nil
}
