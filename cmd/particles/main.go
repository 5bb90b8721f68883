package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/particles/internal/config"
	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/export"
	"github.com/san-kum/particles/internal/metrics"
	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/scenario"
	"github.com/san-kum/particles/internal/storage"
	"github.com/san-kum/particles/internal/strategy"
	"github.com/san-kum/particles/internal/stream"
	"github.com/san-kum/particles/internal/viz"
)

var (
	configFile    string
	envFile       string
	dataDir       string
	preset        string
	strategyName  string
	timeStep      float64
	tickInterval  time.Duration
	frameInterval time.Duration
	threshold     float64
	minSubstep    float64
	workers       int
	count         int
	seed          int64
	from          string

	runTicks   int
	benchTicks int
	plotTicks  int
	save       bool
	addr       string
	theme      string
	psobjOut   string
	svgOut     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "particles",
		Short:        "2D particle physics sandbox",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file (default .env)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&preset, "preset", "", "scenario preset (default, precise, fast)")
	pf.StringVar(&strategyName, "strategy", config.DefaultStrategy, "strategy: default, adaptive, parallel")
	pf.Float64Var(&timeStep, "step", 0, "time step (0 uses the scenario's)")
	pf.DurationVar(&tickInterval, "tick", config.DefaultInterval, "minimum time between ticks")
	pf.DurationVar(&frameInterval, "frame", config.DefaultInterval, "minimum time between frames")
	pf.Float64Var(&threshold, "threshold", config.DefaultThreshold, "adaptive accuracy threshold")
	pf.Float64Var(&minSubstep, "min-substep", 0, "adaptive substep floor (0 disables)")
	pf.IntVar(&workers, "workers", 0, "parallel workers (0 uses every CPU)")
	pf.IntVar(&count, "count", 0, "override the scenario's particle count")
	pf.Int64Var(&seed, "seed", 1, "random seed")
	pf.StringVar(&from, "from", "", "start from a saved run id or .psobj file")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run headless for a number of ticks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runTicks, "ticks", 1000, "ticks to run")
	runCmd.Flags().BoolVar(&save, "save", false, "save the final state")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run with the terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "colour theme: "+strings.Join(viz.ThemeNames(), ", "))

	serveCmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "stream frames over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "time every strategy from the same state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 10, "ticks per strategy")

	plotCmd := &cobra.Command{
		Use:   "plot [scenario]",
		Short: "plot total energy over ticks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plot,
	}
	plotCmd.Flags().IntVar(&plotTicks, "ticks", 500, "ticks to run")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the energy plot to this .svg file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&psobjOut, "psobj", "", "write the particles to this .psobj file instead")
	exportCmd.Flags().StringVar(&svgOut, "svg", "", "draw the particles to this .svg file instead")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios and their presets",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	strategiesCmd := &cobra.Command{
		Use:   "strategies",
		Short: "list strategies",
		Args:  cobra.NoArgs,
		RunE:  listStrategies,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, benchCmd, plotCmd, listCmd, exportCmd, scenariosCmd, strategiesCmd, configCmd)
	return rootCmd
}

// resolveConfig layers preset < config file < environment < flags. A
// scenario named on the command line wins over all of them.
func resolveConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		target := name
		if target == "" {
			target = cfg.Scenario
		}
		p := config.GetPreset(target, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(target))
		}
		c := *p
		cfg = &c
	}
	if configFile != "" {
		if err := config.Merge(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := config.LoadEnv(cfg, files...); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = dataDir
	}
	if f.Changed("strategy") {
		cfg.Strategy = strategyName
	}
	if f.Changed("step") {
		cfg.TimeStep = timeStep
	}
	if f.Changed("tick") {
		cfg.TickInterval = tickInterval
	}
	if f.Changed("frame") {
		cfg.FrameInterval = frameInterval
	}
	if f.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if f.Changed("min-substep") {
		cfg.MinSubstep = minSubstep
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("count") {
		cfg.Count = count
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("addr") {
		cfg.Addr = addr
	}
	if name != "" {
		cfg.Scenario = name
	}

	return cfg, cfg.Validate()
}

func scenarioArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func newEnvironment(cfg *config.Config, logger *log.Logger, renderers ...environment.Renderer) (*environment.Environment, error) {
	reg := strategy.NewRegistry()
	opts := cfg.StrategyOptions()
	opts.Logger = logger
	if err := strategy.RegisterBuiltins(reg, opts); err != nil {
		return nil, err
	}

	envOpts := []environment.Option{
		environment.WithLogger(logger),
		environment.WithIntervals(cfg.TickInterval, cfg.FrameInterval),
	}
	for _, r := range renderers {
		envOpts = append(envOpts, environment.WithRenderer(r))
	}
	return environment.New(reg, cfg.Kind(), envOpts...)
}

// seedEnvironment queues the starting state: a saved run when --from is
// set, otherwise the scenario generated from the configured seed.
func seedEnvironment(env *environment.Environment, cfg *config.Config, st *storage.Store, s scenario.Scenario) error {
	if from == "" {
		scenario.Apply(env, s, cfg.Seed)
		return nil
	}

	var (
		ps  []*physics.Particle
		err error
	)
	step, elapsed := s.TimeStep, 0.0
	if strings.HasSuffix(from, ".psobj") {
		ps, err = storage.ReadFile(from)
	} else {
		var meta *storage.Metadata
		if meta, err = st.Load(from); err == nil {
			if cfg.TimeStep == 0 && meta.TimeStep > 0 {
				step = meta.TimeStep
			}
			elapsed = meta.Elapsed
			ps, err = st.LoadParticles(from)
		}
	}
	if err != nil {
		return err
	}
	env.SetTimeStep(step)
	env.SetElapsed(elapsed)
	env.Replace(ps)
	return nil
}

func metadata(s scenario.Scenario, cfg *config.Config) storage.Metadata {
	return storage.Metadata{Scenario: s.Name, Seed: cfg.Seed}
}

// saveSnapshot saves the collection as it stands at its place in the
// queue, with the loop state read on the loop goroutine.
func saveSnapshot(env *environment.Environment, st *storage.Store, meta storage.Metadata, set *metrics.Set) (string, error) {
	if err := st.Init(); err != nil {
		return "", err
	}
	done := make(chan storage.Metadata, 1)
	var ps []physics.Particle
	env.Snapshot(func(values []physics.Particle) {
		ps = values
		m := meta
		m.Strategy = string(env.Strategy())
		m.TimeStep = env.TimeStep()
		m.Elapsed = env.Elapsed()
		m.Ticks = env.Ticks()
		done <- m
	})
	select {
	case m := <-done:
		if set != nil {
			m.Metrics = set.Values()
		}
		return st.Save(m, ps)
	case <-time.After(2 * time.Second):
		return "", errors.New("snapshot timed out")
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, scenarioArg(args))
	if err != nil {
		return err
	}
	s, err := cfg.ScenarioFor(cfg.Scenario)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	st := storage.New(cfg.DataDir)
	st.SetLogger(logger)

	set := metrics.Standard()
	var last environment.Frame
	capture := environment.RendererFunc(func(f environment.Frame) { last = f })
	env, err := newEnvironment(cfg, logger, set, capture)
	if err != nil {
		return err
	}
	defer env.Stop()

	if err := seedEnvironment(env, cfg, st, s); err != nil {
		return err
	}

	fmt.Printf("running %s with %s strategy...\n", s.Name, cfg.Kind())
	start := time.Now()
	if err := env.RunTicks(runTicks); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("particles: %d\n", len(last.Particles))
	fmt.Printf("ticks: %d (%.0f/s)\n", last.Ticks, float64(last.Ticks)/elapsed.Seconds())
	fmt.Printf("simulated time: %.4f\n", last.Elapsed)
	fmt.Println("\nmetrics:")
	values := set.Values()
	for _, name := range set.Names() {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}

	if !save {
		return nil
	}
	if err := st.Init(); err != nil {
		return err
	}
	meta := metadata(s, cfg)
	meta.Strategy = string(last.Strategy)
	meta.TimeStep = last.TimeStep
	meta.Elapsed = last.Elapsed
	meta.Ticks = last.Ticks
	meta.Metrics = values
	id, err := st.Save(meta, last.Particles)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", id)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, scenarioArg(args))
	if err != nil {
		return err
	}
	s, err := cfg.ScenarioFor(cfg.Scenario)
	if err != nil {
		return err
	}

	// the terminal belongs to the view, so logs go to a file
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	st := storage.New(cfg.DataDir)
	st.SetLogger(logger)

	sink := viz.NewSink()
	set := metrics.Standard()
	env, err := newEnvironment(cfg, logger, sink, set)
	if err != nil {
		return err
	}
	defer env.Stop()

	if err := seedEnvironment(env, cfg, st, s); err != nil {
		return err
	}

	m := viz.NewModel(env, sink.Frames(), viz.Options{
		Title: s.Name,
		Theme: theme,
		Reset: func() {
			if err := seedEnvironment(env, cfg, st, s); err != nil {
				logger.Printf("[SCHED] reset: %v", err)
			}
			set.Reset()
		},
		Save: func() (string, error) {
			return saveSnapshot(env, st, metadata(s, cfg), set)
		},
	})

	env.Start()
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, scenarioArg(args))
	if err != nil {
		return err
	}
	s, err := cfg.ScenarioFor(cfg.Scenario)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	st := storage.New(cfg.DataDir)
	st.SetLogger(logger)

	var hub *stream.Hub
	env, err := newEnvironment(cfg, logger, environment.RendererFunc(func(f environment.Frame) {
		hub.Render(f)
	}))
	if err != nil {
		return err
	}
	defer env.Stop()
	hub = stream.NewHub(env, logger)

	if err := seedEnvironment(env, cfg, st, s); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: hub.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("[STREAM] shutdown: %v", err)
		}
	}()

	env.Start()
	logger.Printf("[STREAM] serving %s on %s%s", s.Name, cfg.Addr, stream.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Println("[STREAM] stopped")
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, scenarioArg(args))
	if err != nil {
		return err
	}
	s, err := cfg.ScenarioFor(cfg.Scenario)
	if err != nil {
		return err
	}
	base := s.Build(cfg.Seed)

	var last environment.Frame
	capture := environment.RendererFunc(func(f environment.Frame) { last = f })
	env, err := newEnvironment(cfg, log.New(io.Discard, "", 0), capture)
	if err != nil {
		return err
	}
	defer env.Stop()

	kinds := []strategy.Kind{strategy.KindDefault}
	for _, k := range env.Registry().Kinds() {
		if k != strategy.KindDefault {
			kinds = append(kinds, k)
		}
	}

	fmt.Printf("benchmarking %s (%d particles, %d ticks, step %g)\n\n", s.Name, len(base), benchTicks, s.TimeStep)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tTIME\tPER TICK\tMAX DEVIATION")

	var reference []physics.Particle
	for _, kind := range kinds {
		if err := env.SetStrategy(kind); err != nil {
			return err
		}
		env.SetTimeStep(s.TimeStep)
		env.SetElapsed(0)
		env.Replace(clone(base))

		start := time.Now()
		if err := env.RunTicks(benchTicks); err != nil {
			return err
		}
		elapsed := time.Since(start)

		if kind == strategy.KindDefault {
			reference = last.Particles
		}
		fmt.Fprintf(w, "%s\t%v\t%v\t%.3g\n",
			kind, elapsed, elapsed/time.Duration(max(benchTicks, 1)), maxDeviation(reference, last.Particles))
	}

	return w.Flush()
}

func clone(ps []*physics.Particle) []*physics.Particle {
	out := make([]*physics.Particle, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

// maxDeviation is the largest position difference between matching
// particles.
func maxDeviation(a, b []physics.Particle) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var dev float64
	for i := range a {
		dev = math.Max(dev, math.Hypot(a[i].X-b[i].X, a[i].Y-b[i].Y))
	}
	return dev
}

func plot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, scenarioArg(args))
	if err != nil {
		return err
	}
	s, err := cfg.ScenarioFor(cfg.Scenario)
	if err != nil {
		return err
	}

	trace := metrics.NewEnergyTrace(0)
	drift := metrics.NewEnergyDrift()
	momentum := metrics.NewMomentumDrift()
	env, err := newEnvironment(cfg, log.New(io.Discard, "", 0), metrics.NewSet(trace, drift, momentum))
	if err != nil {
		return err
	}
	defer env.Stop()

	if err := seedEnvironment(env, cfg, storage.New(cfg.DataDir), s); err != nil {
		return err
	}
	if err := env.RunTicks(plotTicks); err != nil {
		return err
	}

	series := trace.Series()
	if len(series) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("scenario: %s\n", s.Name)
	fmt.Printf("strategy: %s\n", env.Strategy())
	fmt.Printf("samples: %d\n\n", len(series))

	graph := asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("total energy vs tick"),
	)
	fmt.Println(graph)
	fmt.Println()
	fmt.Printf("energy drift: %.6g\n", drift.Value())
	fmt.Printf("momentum drift: %.6g\n", momentum.Value())

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(series, 800, 300, "#00ffff")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTRATEGY\tPARTICLES\tTICKS\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Strategy,
			run.Count,
			run.Ticks,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)

	if psobjOut == "" && svgOut == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	ps, err := st.LoadParticles(args[0])
	if err != nil {
		return err
	}
	values := make([]physics.Particle, len(ps))
	for i, p := range ps {
		values[i] = *p
	}
	if psobjOut != "" {
		if err := storage.WriteFile(psobjOut, values); err != nil {
			return err
		}
		fmt.Printf("wrote %d particles to %s\n", len(values), psobjOut)
	}
	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.ParticlesToSVG(values, 800, 800)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tSTEP\tPRESETS\tDESCRIPTION")
	for _, name := range scenario.Names() {
		s, err := scenario.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%s\t%s\n",
			s.Name,
			len(s.Build(1)),
			s.TimeStep,
			strings.Join(config.ListPresets(name), ","),
			s.Description,
		)
	}
	return w.Flush()
}

var strategyDescriptions = map[strategy.Kind]string{
	strategy.KindDefault:  "every pair once, then every particle, sequentially",
	strategy.KindAdaptive: "whole-collection substeps bounded by relative speed and spacing",
	strategy.KindParallel: "pair blocks claimed by a worker pool, then a parallel update",
}

func listStrategies(cmd *cobra.Command, args []string) error {
	reg := strategy.NewRegistry()
	if err := strategy.RegisterBuiltins(reg, strategy.DefaultOptions()); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tDESCRIPTION")
	for _, k := range reg.Kinds() {
		fmt.Fprintf(w, "%s\t%s\n", k, strategyDescriptions[k])
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	if s, err := cfg.ScenarioFor(cfg.Scenario); err == nil && cfg.Template == nil {
		t := s.Template
		cfg.Template = &t
	}
	if len(args) == 0 {
		return config.Write(cmd.OutOrStdout(), cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}
