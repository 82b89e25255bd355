package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/server"
	"github.com/njchilds90/gosolve/template"
)

var (
	rootCmd = &cobra.Command{
		Use:           "gosolve",
		Short:         "Solve single-unknown equations",
		Long:          `gosolve isolates the one unknown of an equation by undoing its operations in reverse order, or evaluates an expression with no unknown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	solveCmd = &cobra.Command{
		Use:   "solve [equation]",
		Short: "Solve an equation for its single unbound identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSolve,
	}
	evalCmd = &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression without '='",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}
	checkCmd = &cobra.Command{
		Use:   "check [equation]",
		Short: "Check that both sides of a fully bound equation agree",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	normalizeCmd = &cobra.Command{
		Use:   "normalize [text]",
		Short: "Print the canonical form of an equation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runNormalize,
	}
	parseCmd = &cobra.Command{
		Use:   "parse [equation]",
		Short: "Print the expression tree of an equation as JSON and LaTeX",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runParse,
	}
	idealGasCmd = &cobra.Command{
		Use:   "ideal-gas",
		Short: "Solve P*V = n*R*T for whichever of P, V, n, T is not set",
		Args:  cobra.NoArgs,
		RunE:  runIdealGas,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	configPath   string
	logLevel     string
	setFlags     []string
	bindingsFile string
	sigFigs      int
	showSteps    bool
	gasConstant  float64
	checkOnly    bool
	serveAddr    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	for _, c := range []*cobra.Command{solveCmd, evalCmd, checkCmd, idealGasCmd} {
		c.Flags().StringArrayVarP(&setFlags, "set", "s", nil, "Bind a name, as name=value (repeatable)")
		c.Flags().StringVarP(&bindingsFile, "bindings", "b", "", "YAML file mapping names to values")
		c.Flags().IntVar(&sigFigs, "sig", -1, "Round output to this many significant figures (default output.sig_figs)")
	}
	solveCmd.Flags().BoolVar(&showSteps, "steps", false, "Print the step log")
	evalCmd.Flags().BoolVar(&showSteps, "steps", false, "Print the step log")
	idealGasCmd.Flags().Float64Var(&gasConstant, "r", template.GasConstant, "Gas constant")
	idealGasCmd.Flags().BoolVar(&checkOnly, "check", false, "With all four set, check consistency at --sig figures (default 3)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Override server.addr")

	rootCmd.AddCommand(solveCmd, evalCmd, checkCmd, normalizeCmd, parseCmd, idealGasCmd, serveCmd)
}

// ============================================================
// Setup
// ============================================================

type cliEnv struct {
	cfg    config.Config
	solver *gosolve.Solver
	out    *printer
}

func setup(cmd *cobra.Command) (*cliEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

	sig := cfg.Output.SigFigs
	if cmd.Flags().Changed("sig") {
		sig = sigFigs
	}
	return &cliEnv{
		cfg: cfg,
		solver: gosolve.New(
			gosolve.WithLogger(logger),
			gosolve.WithTolerance(cfg.Solver.Tolerance),
			gosolve.WithMaxStepsFactor(cfg.Solver.MaxStepsFactor),
			gosolve.WithRecordSteps(cfg.Solver.RecordSteps || showSteps),
		),
		out: newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output.Color, sig),
	}, nil
}

// collectBindings merges --bindings and --set; --set wins.
func collectBindings() (map[string]float64, error) {
	out := map[string]float64{}
	if bindingsFile != "" {
		data, err := os.ReadFile(bindingsFile)
		if err != nil {
			return nil, fmt.Errorf("read bindings: %w", err)
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse bindings %s: %w", bindingsFile, err)
		}
	}
	set, err := parseSets(setFlags)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		out[k] = v
	}
	return out, nil
}

// parseSets turns name=value pairs into bindings.
func parseSets(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: want name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// ============================================================
// Commands
// ============================================================

func runSolve(cmd *cobra.Command, args []string) error {
	return runMode(cmd, args, (*gosolve.Solver).Solve)
}

func runEval(cmd *cobra.Command, args []string) error {
	return runMode(cmd, args, (*gosolve.Solver).Evaluate)
}

type solveFunc func(*gosolve.Solver, context.Context, string, map[string]float64) (*gosolve.Result, error)

func runMode(cmd *cobra.Command, args []string, solve solveFunc) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	bindings, err := collectBindings()
	if err != nil {
		return err
	}
	res, err := solve(rt.solver, cmd.Context(), strings.Join(args, " "), bindings)
	if err != nil {
		return rt.out.fail(err)
	}
	if showSteps {
		rt.out.steps(res)
	}
	rt.out.warnings(res.Warnings)
	rt.out.answer(res.Unknown, res.Value)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	bindings, err := collectBindings()
	if err != nil {
		return err
	}
	res, err := rt.solver.Check(cmd.Context(), strings.Join(args, " "), bindings)
	if err != nil {
		return rt.out.fail(err)
	}
	rt.out.warnings(res.Warnings)
	rt.out.line(fmt.Sprintf("%t (residual %s)", res.Holds, gosolve.FormatNumber(res.Residual)))
	if !res.Holds {
		return fmt.Errorf("sides differ by %s", gosolve.FormatNumber(res.Residual))
	}
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(gosolve.Normalize(strings.Join(args, " ")), string(gosolve.Sentinel)))
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	eq, err := gosolve.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	lhs, err := gosolve.ToJSON(eq.LHS)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "lhs:", lhs)
	if eq.RHS != nil {
		rhs, err := gosolve.ToJSON(eq.RHS)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "rhs:", rhs)
	}
	fmt.Fprintln(w, "latex:", gosolve.EquationLaTeX(eq))
	return nil
}

func runIdealGas(cmd *cobra.Command, _ []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	bindings, err := collectBindings()
	if err != nil {
		return err
	}
	eq := template.IdealGas(template.WithGasConstant(gasConstant))

	if checkOnly {
		sig := template.ConsistencySigFigs
		if rt.out.sigFigs > 0 {
			sig = rt.out.sigFigs
		}
		ok, err := eq.Consistent(bindings, sig)
		if err != nil {
			return rt.out.fail(err)
		}
		rt.out.line(fmt.Sprintf("%s: %t at %d significant figures", eq, ok, sig))
		if !ok {
			return fmt.Errorf("inconsistent at %d significant figures", sig)
		}
		return nil
	}

	res, err := eq.SolveWith(cmd.Context(), rt.solver, bindings)
	if err != nil {
		return rt.out.fail(err)
	}
	rt.out.line(eq.String())
	names := make([]string, 0, len(res.Bindings))
	for name := range res.Bindings {
		if name != res.Unknown {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		rt.out.line(fmt.Sprintf("  %s = %s", name, rt.out.number(res.Bindings[name])))
	}
	rt.out.answer(res.Unknown, res.Value)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		rt.cfg.Server.Addr = serveAddr
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := rt.cfg.Log.NewLogger(cmd.ErrOrStderr())
	return server.New(rt.cfg, logger).Run(ctx)
}
