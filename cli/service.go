package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gurre/awscmdlet/operation"
	"github.com/gurre/awscmdlet/output"
	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"
)

func (a *App) serviceCommand(s service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   s.name,
		Short: s.short,
	}
	for _, c := range s.commands {
		cmd.AddCommand(a.operationCommand(c))
	}
	return cmd
}

// CommandName is the command-line name of an operation, e.g. create-form.
func CommandName(name string) string {
	return strcase.ToKebab(name)
}

func (a *App) operationCommand(c operation.Command) *cobra.Command {
	info := c.Info()
	cmd := &cobra.Command{
		Use:     CommandName(info.Name),
		Aliases: []string{info.Name},
		Short:   info.Summary,
		Long:    longHelp(info),
		Args:    cobra.NoArgs,
	}

	fs := cmd.Flags()
	fs.SortFlags = false
	bindings := registerParams(fs, info.Params)
	fs.String(flagSelect, "", `response selection: "*", a dotted response path or "^Param"`)
	fs.String(flagInput, "", "JSON object of parameters, or file://path to one; flags take precedence")
	if info.PassThrough != "" {
		fs.Bool(flagPassThru, false, "return the "+info.PassThrough+" parameter instead of the response")
		_ = fs.MarkDeprecated(flagPassThru, "use --select ^"+info.PassThrough)
	}
	if info.Mutating {
		fs.Bool(flagForce, false, "run without asking for confirmation")
	}
	if info.Streaming {
		fs.String(flagOutfile, "", `file receiving the response payload, "-" for stdout`)
		_ = cmd.MarkFlagRequired(flagOutfile)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return a.runOperation(cmd, c, bindings)
	}
	return cmd
}

func longHelp(info operation.Info) string {
	var b strings.Builder
	if info.Summary != "" {
		b.WriteString(info.Summary)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Operation:  %s %s\n", info.Service, info.Name)
	if info.IAMAction != "" {
		fmt.Fprintf(&b, "IAM action: %s\n", info.IAMAction)
	}
	sel := info.Select
	if sel == "" {
		sel = "*"
	}
	fmt.Fprintf(&b, "Returns:    %s\n", sel)
	if info.Mutating {
		b.WriteString("\nThis operation changes resources and asks for confirmation unless --force is given.\n")
	}
	return b.String()
}

func (a *App) runOperation(cmd *cobra.Command, c operation.Command, bindings []binding) error {
	ctx := cmd.Context()
	fs := cmd.Flags()

	inputs, err := collectInputs(fs, c.Info().Params, bindings)
	if err != nil {
		return err
	}
	req := operation.Request{Inputs: inputs}
	req.Select, _ = fs.GetString(flagSelect)
	if fs.Lookup(flagPassThru) != nil {
		req.PassThru, _ = fs.GetBool(flagPassThru)
	}
	if fs.Lookup(flagForce) != nil {
		req.Force, _ = fs.GetBool(flagForce)
	}
	if fs.Lookup(flagOutfile) != nil {
		path, _ := fs.GetString(flagOutfile)
		sink, closeSink, err := a.openSink(path)
		if err != nil {
			return err
		}
		defer closeSink()
		req.Sink = sink
	}

	env, err := a.env(ctx)
	if err != nil {
		return err
	}
	res, err := c.Execute(ctx, env, req)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(a.errOut, "Not confirmed; nothing was changed.")
		return nil
	}
	return output.Render(a.out, a.cfg.Output, res.Value)
}

func (a *App) openSink(path string) (io.Writer, func(), error) {
	if path == "-" {
		return a.out, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

type catalogEntry struct {
	Service   string `json:"service" yaml:"service"`
	Operation string `json:"operation" yaml:"operation"`
	Command   string `json:"command" yaml:"command"`
	IAMAction string `json:"iamAction" yaml:"iamAction"`
	Mutating  bool   `json:"mutating" yaml:"mutating"`
	Streaming bool   `json:"streaming,omitempty" yaml:"streaming,omitempty"`
}

func (a *App) operationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations [service]",
		Short: "List every operation with its IAM action",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []catalogEntry
			for _, s := range a.services {
				if len(args) == 1 && args[0] != s.name {
					continue
				}
				for _, c := range s.commands {
					info := c.Info()
					entries = append(entries, catalogEntry{
						Service:   info.Service,
						Operation: info.Name,
						Command:   s.name + " " + CommandName(info.Name),
						IAMAction: info.IAMAction,
						Mutating:  info.Mutating,
						Streaming: info.Streaming,
					})
				}
			}
			if len(args) == 1 && len(entries) == 0 {
				return fmt.Errorf("unknown service %q", args[0])
			}
			return output.Render(a.out, a.cfg.Output, entries)
		},
	}
}
