// Command numcalc evaluates arithmetic expressions against a pluggable
// numeric backend from the command line. Verbs: eval, repl, serve,
// context.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/fieldcraft/numcalc/internal/httpapi"
	"github.com/fieldcraft/numcalc/internal/rlog"
	"github.com/fieldcraft/numcalc/pkg/numcalc"
	"github.com/fieldcraft/numcalc/pkg/numcalc/backends"
	"github.com/fieldcraft/numcalc/pkg/numcalc/config"
)

// Version holds the current numcalc version; overridden at build time via
// -ldflags.
var Version = "(development)"

var exit = func(code int) { os.Exit(code) }

var usage = func() {
	goptions.PrintHelp()
	exit(1)
}

type globalOpts struct {
	Backend    string `goptions:"--backend, description='Numeric backend: float (default), integer, decimal, complex'"`
	Decimal    bool   `goptions:"--decimal, description='Shorthand for --backend decimal'"`
	BigDecimal bool   `goptions:"--bigdecimal, description='Shorthand for --backend decimal at full precision'"`
	Complex    bool   `goptions:"--complex, description='Shorthand for --backend complex'"`
	Config     string `goptions:"--config, description='Path to a .toml/.yaml context file to load before evaluating'"`
	Version    bool   `goptions:"--version, description='Print the version and exit'"`
	Help       bool   `goptions:"--help, -h"`
	Verbs      goptions.Verbs
	Eval       evalOpts    `goptions:"eval"`
	Repl       replOpts    `goptions:"repl"`
	Serve      serveOpts   `goptions:"serve"`
	Context    contextOpts `goptions:"context"`
}

type evalOpts struct {
	Expression goptions.Remainder `goptions:"description='Expression to evaluate'"`
}

type replOpts struct{}

// contextOpts backs the "context" verb: dump the default context's
// registered operators, functions, and constants for the selected
// backend.
type contextOpts struct{}

type serveOpts struct {
	Addr  string  `goptions:"--addr, description='Address to listen on (default :8080)'"`
	RPS   float64 `goptions:"--rps, description='Requests/sec allowed per client (default 20)'"`
	Burst int     `goptions:"--burst, description='Burst size per client (default 40)'"`
}

// resolveBackend honors the --decimal/--bigdecimal/--complex shorthand
// flags over --backend when set.
func resolveBackend(opts globalOpts) string {
	switch {
	case opts.Decimal:
		return "decimal"
	case opts.BigDecimal:
		return "decimal"
	case opts.Complex:
		return "complex"
	case opts.Backend != "":
		return opts.Backend
	default:
		return "float"
	}
}

func main() {
	var opts globalOpts
	opts.Backend = "float"
	opts.Serve.Addr = ":8080"
	opts.Serve.RPS = 20
	opts.Serve.Burst = 40

	if err := goptions.Parse(&opts); err != nil {
		usage()
	}

	if opts.Version {
		fmt.Println(Version)
		exit(0)
	}

	switch opts.Verbs {
	case "eval":
		runEval(opts)
	case "repl":
		runRepl(opts)
	case "serve":
		runServe(opts)
	case "context":
		runContext(opts)
	default:
		usage()
	}
}

func runEval(opts globalOpts) {
	switch resolveBackend(opts) {
	case "float":
		evalWith(opts, backends.NewFloatContext(false))
	case "integer":
		evalWith(opts, backends.NewIntegerContext(false))
	case "decimal":
		evalWith(opts, backends.NewDecimalContext(false))
	case "complex":
		evalWith(opts, backends.NewComplexContext(false))
	default:
		fmt.Fprintln(os.Stderr, ansi.Sprintf("@R{unknown backend %q}", opts.Backend))
		exit(1)
	}
}

func loadConfigInto[T any](opts globalOpts, ctx *numcalc.Context[T]) {
	if opts.Config == "" {
		return
	}
	if err := config.LoadInto(opts.Config, ctx); err != nil {
		fmt.Fprintln(os.Stderr, ansi.Sprintf("@R{%s}", err.Error()))
		exit(1)
	}
}

// runContext builds the default context for the selected backend (applying
// --config, if given) and dumps its registered operator symbols, function
// names, and constant names.
func runContext(opts globalOpts) {
	switch resolveBackend(opts) {
	case "float":
		dumpContext(opts, backends.NewFloatContext(false))
	case "integer":
		dumpContext(opts, backends.NewIntegerContext(false))
	case "decimal":
		dumpContext(opts, backends.NewDecimalContext(false))
	case "complex":
		dumpContext(opts, backends.NewComplexContext(false))
	default:
		fmt.Fprintln(os.Stderr, ansi.Sprintf("@R{unknown backend %q}", opts.Backend))
		exit(1)
	}
}

func dumpContext[T any](opts globalOpts, ctx *numcalc.Context[T]) {
	loadConfigInto(opts, ctx)

	ops := ctx.Operators.Symbols()
	sort.Strings(ops)
	fns := ctx.Functions.Names()
	sort.Strings(fns)
	consts := make([]string, 0, len(ctx.Constants))
	for name := range ctx.Constants {
		consts = append(consts, name)
	}
	sort.Strings(consts)

	fmt.Println(ansi.Sprintf("@G{operators}:   %s", joinComma(ops)))
	fmt.Println(ansi.Sprintf("@G{functions}:   %s", joinComma(fns)))
	fmt.Println(ansi.Sprintf("@G{constants}:   %s", joinComma(consts)))
	fmt.Println(ansi.Sprintf("@G{caseSensitive}: %v", ctx.CaseSensitive))
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func evalWith[T any](opts globalOpts, ctx *numcalc.Context[T]) {
	loadConfigInto(opts, ctx)

	expr := joinRemainder(opts.Eval.Expression)
	if expr == "" {
		fmt.Fprintln(os.Stderr, ansi.Sprintf("@R{usage: numcalc eval <expression>}"))
		exit(1)
	}

	result, err := numcalc.Eval(expr, ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exit(1)
	}
	fmt.Println(formatResult(result))
}

func joinRemainder(rest goptions.Remainder) string {
	out := ""
	for i, s := range rest {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

func formatResult(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func runRepl(opts globalOpts) {
	ctx := backends.NewFloatContext(false)
	loadConfigInto(opts, ctx)

	engine := numcalc.NewEngine(ctx)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(ansi.Sprintf("@G{numcalc %s}", Version))
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		result, err := engine.Eval(line)
		if err != nil {
			fmt.Println(err.Error())
			rlog.DEBUG("repl: %q failed", line)
			continue
		}
		fmt.Println(strconv.FormatFloat(result, 'g', -1, 64))
	}
}

func runServe(opts globalOpts) {
	srv := httpapi.NewServer(opts.Serve.RPS, opts.Serve.Burst)
	fmt.Println(ansi.Sprintf("@G{numcalc serving on %s}", opts.Serve.Addr))
	if err := http.ListenAndServe(opts.Serve.Addr, srv.Handler()); err != nil {
		fmt.Fprintln(os.Stderr, ansi.Sprintf("@R{%s}", err.Error()))
		exit(1)
	}
}
