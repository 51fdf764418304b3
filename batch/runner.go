package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gurre/awscmdlet/checkpoint"
	"github.com/gurre/awscmdlet/config"
	"github.com/gurre/awscmdlet/invoker"
	"github.com/gurre/awscmdlet/logging"
	"github.com/gurre/awscmdlet/metrics"
	"github.com/gurre/awscmdlet/operation"
	"github.com/sirupsen/logrus"
)

// ErrUnknownOperation is returned for a line naming no known command.
var ErrUnknownOperation = errors.New("unknown operation")

// Lookup finds the command for service and operation.
type Lookup func(service, operation string) (operation.Command, bool)

// Index builds a Lookup over cmds.
func Index(cmds ...[]operation.Command) Lookup {
	byName := make(map[string]operation.Command)
	for _, group := range cmds {
		for _, c := range group {
			info := c.Info()
			byName[info.Service+"/"+info.Name] = c
		}
	}
	return func(service, op string) (operation.Command, bool) {
		c, ok := byName[service+"/"+op]
		return c, ok
	}
}

// Emit receives the result of every completed line, for rendering.
type Emit func(line int64, l Line, res operation.Result) error

// Runner executes the lines of one source sequentially. Progress is saved
// every CheckpointInterval lines and again when the run stops, so a resumed
// run skips every line already handled.
type Runner struct {
	cfg      *config.BatchConfig
	source   Source
	decoder  Decoder
	lookup   Lookup
	store    checkpoint.Store
	uploader ReportUploader
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewRunner(
	cfg *config.BatchConfig,
	source Source,
	decoder Decoder,
	lookup Lookup,
	store checkpoint.Store,
	uploader ReportUploader,
	log logrus.FieldLogger,
) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		decoder:  decoder,
		lookup:   lookup,
		store:    store,
		uploader: uploader,
		metrics:  metrics.NewMetrics(),
		log:      log,
	}
}

// progress tracks the last handled line.
type progress struct {
	batchID string
	line    int64
	saved   int64
}

// Run processes the source until it is exhausted, a line fails without
// ContinueOnError, or ctx is canceled. The report is returned in every case.
func (r *Runner) Run(ctx context.Context, env operation.Env, emit Emit) (metrics.Report, error) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	state, err := r.store.Load(ctx)
	if err != nil {
		return metrics.Report{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	p := progress{batchID: uuid.NewString()}
	var skip int64
	if !state.Empty() && state.Input == r.source.URI() {
		skip = state.Line
		p.line, p.saved = state.Line, state.Line
		if state.BatchID != "" {
			p.batchID = state.BatchID
		}
		r.log.WithFields(logrus.Fields{"batch_id": p.batchID, "line": skip}).Info("resuming batch")
	}
	env.BatchID = p.batchID

	var lineNo int64
	runErr := r.source.Lines(ctx, func(raw []byte) error {
		lineNo++
		if lineNo <= skip {
			r.metrics.RecordResumed()
			return nil
		}
		if err := r.runLine(ctx, env, lineNo, raw, emit); err != nil {
			return err
		}
		p.line = lineNo
		if p.line-p.saved >= int64(r.cfg.CheckpointInterval) {
			if err := r.save(ctx, &p); err != nil {
				return err
			}
		}
		return nil
	})

	// Save and report even when the run was interrupted.
	finishCtx := ctx
	if ctx.Err() != nil {
		var stop context.CancelFunc
		finishCtx, stop = context.WithTimeout(context.WithoutCancel(ctx), r.cfg.ShutdownTimeout)
		defer stop()
	}
	if p.line > p.saved {
		if err := r.save(finishCtx, &p); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	report := r.metrics.GenerateReport(p.batchID)
	if r.cfg.ReportURI != "" && r.uploader != nil {
		if err := r.uploader.UploadReport(finishCtx, r.cfg.ReportURI, report); err != nil {
			runErr = errors.Join(runErr, err)
		} else {
			r.log.WithField("uri", r.cfg.ReportURI).Info("report uploaded")
		}
	}
	return report, runErr
}

// runLine returns an error only when the batch must stop.
func (r *Runner) runLine(ctx context.Context, env operation.Env, lineNo int64, raw []byte, emit Emit) error {
	log := r.log.WithField("line", lineNo)

	l, err := r.decoder.Decode(raw)
	switch {
	case errors.Is(err, errBlank):
		return nil
	case errors.Is(err, ErrCorrupt):
		r.metrics.RecordCorrupt()
		log.WithError(err).Warn("skipping corrupt line")
		return nil
	case err != nil:
		return fmt.Errorf("line %d: %w", lineNo, err)
	}
	log = log.WithFields(logrus.Fields{"service": l.Service, "operation": l.Operation})

	cmd, ok := r.lookup(l.Service, l.Operation)
	if !ok {
		r.metrics.RecordFailed()
		return r.fail(log, lineNo, fmt.Errorf("%w: %s %s", ErrUnknownOperation, l.Service, l.Operation))
	}

	started := time.Now()
	res, err := cmd.Execute(ctx, env, operation.Request{
		Inputs:   l.Parameters,
		Select:   l.Select,
		PassThru: l.PassThru,
		Force:    l.Force || r.cfg.Force,
	})
	r.metrics.RecordInvocation(l.Service, l.Operation, time.Since(started))
	if err != nil {
		// An interrupted line is not handled; the resumed run retries it.
		if errors.Is(err, invoker.ErrCanceled) || ctx.Err() != nil {
			return err
		}
		r.metrics.RecordFailed()
		return r.fail(log, lineNo, err)
	}

	if res.Skipped {
		r.metrics.RecordSkipped()
	} else {
		r.metrics.RecordSucceeded()
		r.metrics.RecordStreamed(res.Streamed)
	}
	if emit != nil {
		return emit(lineNo, l, res)
	}
	return nil
}

func (r *Runner) fail(log logrus.FieldLogger, lineNo int64, err error) error {
	if r.cfg.ContinueOnError {
		log.WithError(err).Error("invocation failed, continuing")
		return nil
	}
	return fmt.Errorf("line %d: %w", lineNo, err)
}

func (r *Runner) save(ctx context.Context, p *progress) error {
	err := r.store.Save(ctx, checkpoint.State{
		BatchID:   p.batchID,
		Input:     r.source.URI(),
		Line:      p.line,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	p.saved = p.line
	return nil
}
