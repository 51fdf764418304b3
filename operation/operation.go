// Package operation wires the binder, composer, invoker and selector into the
// single pipeline every command runs:
//
//	gate -> bind -> select (validate) -> preflight -> blobs -> compose -> invoke -> stream -> select
//
// An Operation is declared once per SDK call with a Spec and a method
// expression of the client interface, then bound to a client provider to
// obtain a Command.
package operation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"time"

	"github.com/gurre/awscmdlet/binder"
	"github.com/gurre/awscmdlet/blob"
	"github.com/gurre/awscmdlet/composer"
	"github.com/gurre/awscmdlet/confirm"
	"github.com/gurre/awscmdlet/invoker"
	"github.com/gurre/awscmdlet/journal"
	"github.com/gurre/awscmdlet/logging"
	"github.com/gurre/awscmdlet/schema"
	"github.com/gurre/awscmdlet/selector"
	"github.com/sirupsen/logrus"
)

// Spec declares an operation.
type Spec struct {
	Service   string
	Name      string
	IAMAction string
	Summary   string
	Mutating  bool

	Params []schema.Param
	Unions []schema.Union

	// Select is the default selection directive; empty means "*".
	Select string
	// PassThrough names the parameter echoed by the deprecated pass-thru flag.
	PassThrough string
	// Target names the parameter describing what a mutating call acts on.
	Target string
}

// Info describes a declared operation.
type Info struct {
	Spec
	Streaming bool
}

// Authorizer checks an IAM action before the call.
type Authorizer interface {
	Authorize(ctx context.Context, action string) error
}

// BlobLoader loads a blob source into scope.
type BlobLoader interface {
	Load(ctx context.Context, scope *blob.Scope, ref string) (*blob.Buffer, error)
}

// Env holds the collaborators shared by every invocation.
type Env struct {
	Gate      *confirm.Gate
	Log       logrus.FieldLogger
	Strict    bool
	Blobs     BlobLoader
	Preflight Authorizer
	Journal   journal.Recorder
	BatchID   string
}

// Request is one caller invocation.
type Request struct {
	Inputs   map[string]any
	Select   string
	PassThru bool
	Force    bool
	// Sink receives streamed response bodies; nil discards them.
	Sink io.Writer
}

// Result is the outcome of a completed or skipped invocation.
type Result struct {
	Value       any
	Skipped     bool
	Streamed    int64
	Diagnostics []binder.Diagnostic
}

// Command is an operation bound to a client.
type Command interface {
	Info() Info
	Execute(ctx context.Context, env Env, req Request) (Result, error)
}

// Operation is a declared SDK call. C is the client interface, In and Out
// the SDK input and output structs and O the client options type.
type Operation[C, In, Out, O any] struct {
	spec   Spec
	tree   *schema.Tree
	def    selector.Expression
	call   func(C, context.Context, *In, ...func(*O)) (*Out, error)
	stream func(*Out) *io.ReadCloser
}

// New declares an operation. It panics when spec does not match In, since
// operation tables are static.
func New[C, In, Out, O any](spec Spec, call func(C, context.Context, *In, ...func(*O)) (*Out, error)) *Operation[C, In, Out, O] {
	tree, err := schema.Build((*In)(nil), spec.Params, spec.Unions...)
	if err != nil {
		panic(fmt.Sprintf("operation %s: %v", spec.Name, err))
	}

	def := selector.Wildcard()
	if spec.Select != "" {
		def, err = selector.Parse(spec.Select)
		if err == nil {
			def, err = def.Validate((*Out)(nil), lookup(tree))
		}
		if err != nil {
			panic(fmt.Sprintf("operation %s: default selection: %v", spec.Name, err))
		}
	}
	if spec.PassThrough != "" {
		if _, ok := tree.Lookup(spec.PassThrough); !ok {
			panic(fmt.Sprintf("operation %s: unknown pass-through parameter %s", spec.Name, spec.PassThrough))
		}
	}

	return &Operation[C, In, Out, O]{spec: spec, tree: tree, def: def, call: call}
}

// WithStream marks the output field returned by body as a streaming payload.
// The pipeline copies it to the request sink, closes it and clears the field
// before selection.
func (o *Operation[C, In, Out, O]) WithStream(body func(*Out) *io.ReadCloser) *Operation[C, In, Out, O] {
	o.stream = body
	return o
}

// Tree returns the operation's request schema.
func (o *Operation[C, In, Out, O]) Tree() *schema.Tree {
	return o.tree
}

func (o *Operation[C, In, Out, O]) Info() Info {
	return Info{Spec: o.spec, Streaming: o.stream != nil}
}

// Bind returns a Command obtaining its client from provider on each call.
func (o *Operation[C, In, Out, O]) Bind(provider func(context.Context) (C, error)) Command {
	return &bound[C, In, Out, O]{op: o, provider: provider}
}

type bound[C, In, Out, O any] struct {
	op       *Operation[C, In, Out, O]
	provider func(context.Context) (C, error)
}

func (b *bound[C, In, Out, O]) Info() Info {
	return b.op.Info()
}

func (b *bound[C, In, Out, O]) Execute(ctx context.Context, env Env, req Request) (Result, error) {
	o := b.op
	log := env.logger().WithFields(logrus.Fields{"service": o.spec.Service, "operation": o.spec.Name})

	target := o.target(req.Inputs)
	if o.spec.Mutating {
		ok, err := env.Gate.Check(ctx, o.spec.Name, target, req.Force)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			log.WithField("target", target).Info("not confirmed, skipping")
			return Result{Skipped: true}, nil
		}
	}

	set, diags, err := binder.Bind(o.tree, req.Inputs, binder.Options{Strict: env.Strict})
	for _, d := range diags {
		log.WithFields(logrus.Fields{"param": d.Param, "code": d.Code.String()}).Warn(d.Message)
	}
	res := Result{Diagnostics: diags}
	if err != nil {
		return res, err
	}

	expr, err := selector.Choose(req.Select, req.PassThru, o.def, o.spec.PassThrough)
	if err == nil {
		expr, err = expr.Validate((*Out)(nil), lookup(o.tree))
	}
	if err != nil {
		return res, err
	}

	if env.Preflight != nil && o.spec.IAMAction != "" {
		if err := env.Preflight.Authorize(ctx, o.spec.IAMAction); err != nil {
			return res, err
		}
	}

	scope := blob.NewScope()
	defer scope.Close()
	if set, err = o.loadBlobs(ctx, env, scope, set); err != nil {
		return res, err
	}

	in := new(In)
	if _, err := composer.Compose(o.tree, set, in); err != nil {
		return res, err
	}

	client, err := b.provider(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to create %s client: %w", o.spec.Service, err)
	}

	started := time.Now()
	out, err := invoker.Invoke[In, Out](ctx, o.spec.Name, func(ctx context.Context, in *In) (*Out, error) {
		return o.call(client, ctx, in)
	}, in)
	if err == nil && o.stream != nil {
		res.Streamed, err = o.drain(ctx, out, req.Sink)
	}
	if o.spec.Mutating {
		env.record(ctx, journal.Entry{
			BatchID:    env.BatchID,
			Service:    o.spec.Service,
			Operation:  o.spec.Name,
			Target:     target,
			Status:     status(err),
			Error:      errorText(err),
			StartedAt:  started.UTC(),
			DurationMs: time.Since(started).Milliseconds(),
			Params:     set.Names(),
		})
	}
	if err != nil {
		return res, err
	}

	res.Value = expr.Select(out, set)
	log.WithField("select", expr.String()).Debug("invocation complete")
	return res, nil
}

// target describes the resource a mutating call acts on, for the gate and
// the journal.
func (o *Operation[C, In, Out, O]) target(inputs map[string]any) string {
	if o.spec.Target == "" {
		return o.spec.Name
	}
	if v := inputs[o.spec.Target]; v != nil {
		return fmt.Sprintf("%v (%s)", v, o.spec.Name)
	}
	// Aliases and other casings, in key order.
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p, ok := o.tree.Lookup(k)
		if !ok || p.Name != o.spec.Target || inputs[k] == nil {
			continue
		}
		return fmt.Sprintf("%v (%s)", inputs[k], o.spec.Name)
	}
	return o.spec.Name
}

func (o *Operation[C, In, Out, O]) loadBlobs(ctx context.Context, env Env, scope *blob.Scope, set binder.ParameterSet) (binder.ParameterSet, error) {
	loader := env.Blobs
	for _, p := range o.tree.Params() {
		if p.Kind != schema.Blob {
			continue
		}
		v, ok := set.Get(p.Name)
		if !ok {
			continue
		}
		if loader == nil {
			loader = blob.NewResolver(nil)
		}
		buf, err := loader.Load(ctx, scope, v.Raw.(string))
		if err != nil {
			return set, &binder.BindingError{Param: p.Name, Err: err}
		}
		typed, err := blobValue(buf, o.tree.Leaf(p.Name).Type)
		if err != nil {
			return set, &binder.BindingError{Param: p.Name, Err: err}
		}
		set = set.With(p.Name, binder.Value{Raw: v.Raw, Typed: typed})
	}
	return set, nil
}

var bytesType = reflect.TypeOf([]byte(nil))

func blobValue(buf *blob.Buffer, target reflect.Type) (any, error) {
	if target == bytesType {
		return buf.Bytes()
	}
	return buf.Reader()
}

func (o *Operation[C, In, Out, O]) drain(ctx context.Context, out *Out, sink io.Writer) (int64, error) {
	field := o.stream(out)
	body := *field
	if body == nil {
		return 0, nil
	}
	*field = nil
	defer body.Close()

	if sink == nil {
		sink = io.Discard
	}
	n, err := io.Copy(sink, body)
	if err != nil {
		return n, invoker.Normalize(ctx, o.spec.Name, fmt.Errorf("failed to stream response body: %w", err))
	}
	return n, nil
}

func lookup(tree *schema.Tree) func(string) (string, bool) {
	return func(name string) (string, bool) {
		p, ok := tree.Lookup(name)
		return p.Name, ok
	}
}

func (e Env) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logging.Discard()
	}
	return e.Log
}

func (e Env) record(ctx context.Context, entry journal.Entry) {
	if e.Journal != nil {
		e.Journal.Record(ctx, entry)
	}
}

func status(err error) journal.Status {
	switch {
	case err == nil:
		return journal.StatusSucceeded
	case errors.Is(err, invoker.ErrCanceled):
		return journal.StatusCanceled
	default:
		return journal.StatusFailed
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
