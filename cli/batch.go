package cli

import (
	"fmt"

	"github.com/gurre/awscmdlet/batch"
	"github.com/gurre/awscmdlet/checkpoint"
	"github.com/gurre/awscmdlet/config"
	"github.com/gurre/awscmdlet/operation"
	"github.com/gurre/awscmdlet/output"
	"github.com/spf13/cobra"
)

func (a *App) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run one operation per JSON line of an input file",
		Long: `Run one operation per JSON line, in order:

  {"service":"medicalimaging","operation":"DeleteImageSet","parameters":{"DatastoreId":"...","ImageSetId":"..."},"force":true}

Progress is checkpointed to --resume so an interrupted run continues after
the last completed line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd)
		},
	}

	fs := cmd.Flags()
	fs.String("input", "", "s3://bucket/key.jsonl or a local file (required)")
	fs.String("resume", "", "checkpoint location, s3://bucket/key or file:///path")
	fs.String("report", "", "s3://bucket/key receiving the final report")
	fs.Int("checkpoint-interval", 100, "save progress every N lines")
	fs.Bool("continue-on-error", false, "keep going after a failed line")
	fs.Bool(flagForce, false, "run mutating lines without asking for confirmation")
	fs.Duration("shutdown-timeout", 0, "time allowed for the final checkpoint after interruption")
	a.bind(fs.Lookup("input"), config.KeyBatchInput)
	a.bind(fs.Lookup("resume"), config.KeyBatchResume)
	a.bind(fs.Lookup("report"), config.KeyBatchReport)
	a.bind(fs.Lookup("checkpoint-interval"), config.KeyBatchCheckpoint)
	a.bind(fs.Lookup("continue-on-error"), config.KeyBatchContinueOnError)
	a.bind(fs.Lookup(flagForce), config.KeyBatchForce)
	a.bind(fs.Lookup("shutdown-timeout"), config.KeyBatchShutdownTimeout)
	return cmd
}

func (a *App) runBatch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	bcfg, err := config.LoadBatch(a.v)
	if err != nil {
		return err
	}

	var source batch.Source
	if bucket, key, ok := bcfg.InputObject(); ok {
		c, err := a.awsClients(ctx)
		if err != nil {
			return err
		}
		source = batch.NewS3Source(a.newStreamer(c), bucket, key)
	} else {
		source = batch.NewFileSource(bcfg.InputURI)
	}

	s3c := &lazyS3{app: a}
	store, err := checkpoint.Open(bcfg.ResumeURI, s3c)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	var commands [][]operation.Command
	for _, s := range a.services {
		commands = append(commands, s.commands)
	}

	env, err := a.env(ctx)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(bcfg, source, batch.NewJSONDecoder(), batch.Index(commands...), store, batch.NewS3ReportUploader(s3c), a.log)
	report, err := runner.Run(ctx, env, func(line int64, l batch.Line, res operation.Result) error {
		if res.Skipped {
			return nil
		}
		return output.Render(a.out, a.cfg.Output, res.Value)
	})
	fmt.Fprintln(a.errOut, report.String())
	return err
}
