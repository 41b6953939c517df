package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/config"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/lexer"
	"github.com/bloch-labs/bloch-go/parser"
	"github.com/bloch-labs/bloch-go/runtime"
	"github.com/bloch-labs/bloch-go/semantic"
)

var (
	shotsOverride int
	showQASM      bool
	noColor       bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Bloch program",
	Long: `Execute a Bloch program from a file.

Examples:
  # Run a program with its own @shots(N) annotation (or one shot by default)
  bloch run program.bloch

  # Override the shot count from the command line
  bloch run --shots 100 program.bloch

  # Print the QASM 2.0 trace of the final shot
  bloch run --qasm program.bloch`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&shotsOverride, "shots", 0, "override the program's shot count")
	runCmd.Flags().BoolVar(&showQASM, "qasm", false, "print the QASM 2.0 trace of the final shot")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
}

func runProgram(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	cfgPath := filepath.Join(filepath.Dir(filename), "bloch.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfgPath, err)
	}

	useColor := !noColor && isatty.IsTerminal(os.Stderr.Fd())
	if cfg.Color != nil {
		useColor = *cfg.Color && !noColor
	}

	tokens, lexErr := lexer.Tokenize(source)
	if lexErr != nil {
		return reportError(lexErr, source, filename, useColor)
	}

	prog, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		return reportError(parseErr, source, filename, useColor)
	}

	result, semErr := semantic.Analyse(prog)
	if semErr != nil {
		return reportError(semErr, source, filename, useColor)
	}

	shots := result.ShotCount
	if shotsOverride > 0 {
		shots = shotsOverride
	} else if cfg.Shots > 0 && !(result.MainFunc != nil && result.MainFunc.HasShots) {
		shots = cfg.Shots
	}

	var out io.Writer = os.Stdout
	if !cfg.Echo {
		out = io.Discard
	}
	agg, qasmTrace, runErr := runtime.RunShots(prog, result.Registry, functionTable(prog), result.MainFunc, shots, out, cfg.WarnOnExit)
	if runErr != nil {
		return reportError(runErr, source, filename, useColor)
	}

	printTrackedSummary(agg)
	if showQASM {
		fmt.Println(qasmTrace)
	}
	return nil
}

func reportError(e *errs.BlochError, source, filename string, color bool) error {
	e.Source = source
	e.File = filename
	fmt.Fprintln(os.Stderr, e.Format(color))
	return fmt.Errorf("bloch: failed")
}

func printTrackedSummary(agg map[string]map[string]int) {
	labels := make([]string, 0, len(agg))
	for label := range agg {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		counts := agg[label]
		outcomes := make([]string, 0, len(counts))
		for o := range counts {
			outcomes = append(outcomes, o)
		}
		for _, o := range runtime.OutcomeOrder(outcomes) {
			fmt.Printf("%s: %s -> %d\n", label, o, counts[o])
		}
	}
}

func functionTable(prog *ast.Program) map[string]*ast.FunctionDecl {
	out := make(map[string]*ast.FunctionDecl, len(prog.Functions))
	for _, fn := range prog.Functions {
		out[fn.Name] = fn
	}
	return out
}
