// Package commands runs console lines such as "drop -x 2 -y 8" against flag-based subcommands.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

const prefix = "cmd "

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state and FlagSet.Args().
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. name is the first token of a line (e.g. "grid").
// fs is that command's FlagSet; run is called after fs.Parse(args[1:]) succeeds.
// The FlagSet's error handling is switched to ContinueOnError and its output is discarded;
// Execute returns parse errors instead.
func (r *Registry) Register(name, summary string, fs *flag.FlagSet, run func() error) {
	fs.Init(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	r.cmds[name] = &Command{Name: name, Summary: summary, FlagSet: fs, Run: run}
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse interprets line as a console line. A leading "cmd " is accepted and stripped, so lines typed
// the old way keep working. The rest is tokenized by spaces. ok is false for a blank line.
func Parse(line string) (args []string, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, prefix)
	args = strings.Fields(line)
	if len(args) == 0 || (len(args) == 1 && args[0] == strings.TrimSpace(prefix)) {
		return nil, false
	}
	return args, true
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Flags are reset to their defaults first, so a value given on one line does not leak into the next.
// Returns an error for unknown command, parse error, or from Run(). "-h" returns the usage text as the error.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand")
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", name)
	}
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errors.New(r.Usage(name))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run()
}

// Usage describes one command and its flags on a single line.
func (r *Registry) Usage(name string) string {
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Sprintf("unknown command: %s", name)
	}
	var b strings.Builder
	b.WriteString(name)
	if cmd.Summary != "" {
		b.WriteString(": ")
		b.WriteString(cmd.Summary)
	}
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&b, " [-%s=%s]", f.Name, f.DefValue)
	})
	return b.String()
}
