package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/mike-wendt/liblognorm/pkg/pdag"
	"github.com/mike-wendt/liblognorm/pkg/rules"
	"github.com/mike-wendt/liblognorm/pkg/script"
	"github.com/mike-wendt/liblognorm/plugin"
	"github.com/mike-wendt/liblognorm/plugin/file"
	"github.com/mike-wendt/liblognorm/plugin/stdstream"
	"github.com/mike-wendt/liblognorm/plugin/store"
	"github.com/mike-wendt/liblognorm/runtime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	log := hclog.Default()
	if len(os.Args) <= 1 {
		usage()
		return
	}
	args := os.Args[1:]
	switch args[0] {
	case "exec":
		start := time.Now()
		if err := doExec(log, args[1:]...); err != nil {
			exitError("Failed to execute script: %v", err)
		}
		fmt.Printf("Script executed successfully in %s\n", roundedDuration(time.Now().Sub(start)))
	case "vet":
		if err := doVet(log, args[1:]...); err != nil {
			exitError("Dry run failed: %v", err)
		}
		fmt.Println("Dry run ran successfully")
	case "rules":
		if err := doRules(log, args[1:]...); err != nil {
			exitError("Failed to inspect rulebase: %v", err)
		}
	case "plugins":
		doPrintPlugins()
	case "help":
		usage()
	default:
		exitError("Unrecognized command: '%s'", args[0])
	}
}

func roundedDuration(dur time.Duration) string {
	switch {
	case dur < time.Millisecond:
		return dur.Round(time.Microsecond).String()
	case dur < time.Second:
		return dur.Round(time.Millisecond).String()
	default:
		return dur.Round(time.Second).String()
	}
}

func exitError(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Printf("Error: "+format, args...)
	usage()
	os.Exit(1)
}

func usage() {
	text := `
lognorm loads and runs log normalization pipelines.

  lognorm help
  lognorm plugins
  lognorm exec FILE
  lognorm vet FILE
  lognorm rules MANIFEST

The 'help' subcommand will print this usage information.
The 'plugins' subcommand will print the script grammar and the documentation for all plugins loaded into the runtime.
The 'exec' subcommand will execute FILE as a pipeline script. Any errors that occur during execution will be reported.
The 'vet' subcommand will dry run FILE as a pipeline script. Errors will still be reported as if the script were really executed, but no source or sink will touch real data.
The 'rules' subcommand will compile MANIFEST as a rulebase and print pdag diagnostics about it, without running any pipeline. A digest of the compiled samples is recorded to a rulebase_history.db next to MANIFEST as an audit trail.
`
	fmt.Print(text)
}

func plugins() []plugin.Plugin {
	return []plugin.Plugin{
		file.Plugin(),
		store.Plugin(),
		stdstream.Plugin(),
	}
}

func doPrintPlugins() {
	reg := plugin.NewRegistration()
	for _, p := range plugins() {
		p.Register(reg)
	}
	fmt.Print(script.GrammarDescription)
	fmt.Println("Plugins are used to extend pipeline scripts with technology specific sources and sinks.")
	fmt.Println()
	fmt.Print(reg.AllDocs())
}

func doExec(log hclog.Logger, args ...string) (rerr error) {
	if len(args) < 1 {
		return errors.New("not enough arguments for exec")
	}
	r := runtime.NewRuntime(log, nil, plugins()...)
	if err := r.Start(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := r.Stop(); err != nil {
			log.Error("Error while stopping runtime", "error", err)
			rerr = err
		}
	}()
	ast, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}
	return r.Execute(ast...)
}

func doVet(log hclog.Logger, args ...string) (rerr error) {
	if len(args) < 1 {
		return errors.New("not enough arguments for vet")
	}
	r := runtime.NewRuntime(log, nil, plugins()...)
	if err := r.Start(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := r.Stop(); err != nil {
			log.Error("Error while stopping runtime", "error", err)
			rerr = err
		}
	}()
	ast, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}
	return r.DryRun(ast...)
}

func doRules(log hclog.Logger, args ...string) error {
	if len(args) < 1 {
		return errors.New("not enough arguments for rules")
	}
	manifestPath := args[0]
	manifest, err := rules.LoadManifestFile(manifestPath)
	if err != nil {
		return err
	}
	ctx, err := rules.Compile(manifest, rules.OpenFile)
	if err != nil {
		return err
	}
	fmt.Println(pdag.FullStats(ctx).String())
	pdag.Dump(ctx, os.Stdout)
	return recordRulebase(log, manifestPath, manifest)
}

// recordRulebase digests the manifest's compiled samples into a
// rulebase_history table next to manifestPath, giving an operator an audit
// trail of what was compiled and when. It is never consulted by Compile
// itself; there's no hot-reload to decide against here, just a record.
func recordRulebase(log hclog.Logger, manifestPath string, manifest *rules.Manifest) error {
	dbPath := filepath.Join(filepath.Dir(manifestPath), "rulebase_history.db")
	st, err := store.NewStore(log, dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("Failed to close rulebase history store", "error", err)
		}
	}()

	paths := manifest.Files()
	contents := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		contents = append(contents, data)
	}
	return st.RecordRulebase(context.Background(), paths, contents)
}
