package cli

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gurre/awscmdlet/schema"
	"github.com/iancoleman/strcase"
	"github.com/spf13/pflag"
)

// Flags shared by every operation command.
const (
	flagSelect   = "select"
	flagPassThru = "pass-thru"
	flagForce    = "force"
	flagInput    = "cli-input-json"
	flagOutfile  = "outfile"
)

// requestPrefix renames a parameter flag that collides with a command flag,
// e.g. the Force request field becomes --request-force.
const requestPrefix = "request-"

var reserved = map[string]bool{
	flagSelect: true, flagPassThru: true, flagForce: true, flagInput: true, flagOutfile: true,
	"help": true, "config": true, "region": true, "profile": true, "endpoint-url": true,
	"output": true, "log-level": true, "log-format": true, "strict": true,
	"max-attempts": true, "audit-table": true, "preflight": true,
}

// binding maps one flag onto one parameter. input is the name or alias the
// flag was derived from; param is the canonical name.
type binding struct {
	flag  string
	input string
	param string
	kind  schema.Kind
}

// FlagName returns the flag for a parameter or alias name.
func FlagName(param string) string {
	name := strcase.ToKebab(param)
	if reserved[name] {
		return requestPrefix + name
	}
	return name
}

// registerParams defines a flag for every parameter name and alias. Aliases
// are hidden; the binder resolves them to the canonical parameter.
func registerParams(fs *pflag.FlagSet, params []schema.Param) []binding {
	var out []binding
	for _, p := range params {
		for i, name := range p.Names() {
			flag := FlagName(name)
			if fs.Lookup(flag) != nil {
				continue
			}
			usage := usageFor(p)
			if i > 0 {
				usage = "alias of --" + FlagName(p.Name)
			}
			switch p.Kind {
			case schema.Int:
				fs.Int64(flag, 0, usage)
			case schema.Bool:
				fs.Bool(flag, false, usage)
			case schema.StringList:
				fs.StringSlice(flag, nil, usage)
			case schema.StringMap:
				fs.StringToString(flag, nil, usage)
			default:
				fs.String(flag, "", usage)
			}
			if i > 0 {
				_ = fs.MarkHidden(flag)
			}
			out = append(out, binding{flag: flag, input: name, param: p.Name, kind: p.Kind})
		}
	}
	return out
}

func usageFor(p schema.Param) string {
	var b strings.Builder
	if p.Help != "" {
		b.WriteString(p.Help)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "[%s]", p.Path)
	switch p.Kind {
	case schema.JSON:
		b.WriteString(" (JSON)")
	case schema.Blob:
		b.WriteString(" (fileb://path, s3://bucket/key or text)")
	}
	if p.Required {
		b.WriteString(" (required)")
	}
	return b.String()
}

// canonicalNames maps every lower-cased parameter name and alias to the
// canonical parameter name.
func canonicalNames(params []schema.Param) map[string]string {
	out := make(map[string]string, len(params))
	for _, p := range params {
		for _, name := range p.Names() {
			out[strings.ToLower(name)] = p.Name
		}
	}
	return out
}

// collectInputs returns the values of every flag set on the command line,
// layered over the --cli-input-json document. Document keys and flags are
// keyed by canonical parameter name, so a flag overrides the document entry
// for the same parameter whichever alias or casing either used. Unknown keys
// and a parameter given twice within one source are kept as written for the
// binder to reject.
func collectInputs(fs *pflag.FlagSet, params []schema.Param, bindings []binding) (map[string]any, error) {
	names := canonicalNames(params)
	inputs := map[string]any{}
	fromDoc := map[string][]string{}
	if doc, _ := fs.GetString(flagInput); doc != "" {
		loaded, err := loadInputJSON(doc)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(loaded))
		for k := range loaded {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if canonical, ok := names[strings.ToLower(k)]; ok {
				if _, taken := inputs[canonical]; !taken {
					key = canonical
				}
				fromDoc[canonical] = append(fromDoc[canonical], key)
			}
			inputs[key] = loaded[k]
		}
	}

	fromFlags := map[string]bool{}
	for _, b := range bindings {
		if !fs.Changed(b.flag) {
			continue
		}
		var (
			v   any
			err error
		)
		switch b.kind {
		case schema.Int:
			v, err = fs.GetInt64(b.flag)
		case schema.Bool:
			v, err = fs.GetBool(b.flag)
		case schema.StringList:
			v, err = fs.GetStringSlice(b.flag)
		case schema.StringMap:
			v, err = fs.GetStringToString(b.flag)
		default:
			v, err = fs.GetString(b.flag)
		}
		if err != nil {
			return nil, fmt.Errorf("flag --%s: %w", b.flag, err)
		}
		if fromFlags[b.param] {
			inputs[b.input] = v
			continue
		}
		for _, key := range fromDoc[b.param] {
			delete(inputs, key)
		}
		delete(fromDoc, b.param)
		fromFlags[b.param] = true
		inputs[b.param] = v
	}
	return inputs, nil
}

// loadInputJSON accepts a JSON object or file://path naming one.
func loadInputJSON(doc string) (map[string]any, error) {
	data := []byte(doc)
	if path, ok := strings.CutPrefix(doc, "file://"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read --%s: %w", flagInput, err)
		}
		data = b
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var inputs map[string]any
	if err := dec.Decode(&inputs); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flagInput, err)
	}
	if inputs == nil {
		inputs = map[string]any{}
	}
	return inputs, nil
}
