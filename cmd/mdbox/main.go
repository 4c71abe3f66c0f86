package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kmataru/mdbox/internal/analysis"
	"github.com/kmataru/mdbox/internal/config"
	"github.com/kmataru/mdbox/internal/experiment"
	"github.com/kmataru/mdbox/internal/storage"
	"github.com/kmataru/mdbox/internal/traj"
	"github.com/kmataru/mdbox/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	particles    int
	box          float64
	mass         float64
	temperature  float64
	dt           float64
	steps        int
	dumpInterval int
	seedFlag     int64
	sample       int
	workers      int

	sigma    float64
	epsilon  float64
	coulomb  bool
	charge   float64
	coupling float64

	thermostatKind string
	tau            float64

	frameRate    int
	stepsPerTick int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdbox",
		Short: "Lennard-Jones molecular dynamics in a periodic box",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdbox", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's energy and temperature series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "mean-square displacement and spectral analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the force kernel across system sizes",
		RunE:  benchKernel,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 200, "steps per measurement")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-tick", 10, "integration steps per frame")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, benchCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
	cmd.Flags().IntVarP(&particles, "particles", "n", config.DefaultParticles, "particle count")
	cmd.Flags().Float64Var(&box, "box", config.DefaultBox, "cubic box edge")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "particle mass")
	cmd.Flags().Float64Var(&temperature, "temp", config.DefaultTemperature, "target temperature")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "total steps")
	cmd.Flags().IntVar(&dumpInterval, "dump", config.DefaultDumpInterval, "steps between trajectory frames")
	cmd.Flags().Int64Var(&seedFlag, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&sample, "sample", 10, "steps between diagnostics samples")
	cmd.Flags().IntVar(&workers, "workers", 1, "force kernel workers (0 = per CPU)")
	cmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "lennard-jones length scale")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "lennard-jones energy scale")
	cmd.Flags().BoolVar(&coulomb, "coulomb", false, "enable coulomb term")
	cmd.Flags().Float64Var(&charge, "charge", 0.5, "charge magnitude (alternating signs)")
	cmd.Flags().Float64Var(&coupling, "coupling", 1.0, "coulomb coupling constant")
	cmd.Flags().StringVar(&thermostatKind, "thermostat", "none", "thermostat: none, rescale, berendsen")
	cmd.Flags().Float64Var(&tau, "tau", 0.1, "berendsen coupling time")
}

// buildConfig resolves precedence: defaults, then preset, then config file,
// then explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("box") {
		cfg.Box = box
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("temp") {
		cfg.Temperature = temperature
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dump") {
		cfg.DumpInterval = dumpInterval
	}
	if flags.Changed("sample") {
		cfg.SampleInterval = sample
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("sigma") {
		cfg.ForceField.LennardJones.Sigma = sigma
	}
	if flags.Changed("epsilon") {
		cfg.ForceField.LennardJones.Epsilon = epsilon
	}
	if flags.Changed("coulomb") {
		cfg.ForceField.Coulomb.Enabled = coulomb
	}
	if flags.Changed("charge") {
		cfg.ForceField.Coulomb.Charge = charge
	}
	if flags.Changed("coupling") {
		cfg.ForceField.Coulomb.Coupling = coupling
	}
	if flags.Changed("thermostat") {
		cfg.Thermostat.Kind = thermostatKind
	}
	if flags.Changed("tau") {
		cfg.Thermostat.Tau = tau
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seedFlag
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Begin(cfg)
	if err != nil {
		return err
	}

	sink, err := traj.Create(st.TrajPath(runID))
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %d particles for %d steps...\n", cfg.Particles, cfg.Steps)
	start := time.Now()

	result, err := exp.Run(ctx, sink)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := sink.Close(); err != nil {
		return err
	}
	if err := st.Finish(runID, cfg, result, exp.Series()); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", result.FramesWritten)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tBOX\tTEMP\tDT\tSTEPS\tTHERMO")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.4g\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Box,
			run.Temperature,
			run.Dt,
			run.Steps,
			run.Thermostat,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", series.Len())

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{series.Total, "total energy"},
		{series.Kinetic, "kinetic energy"},
		{series.Potential, "potential energy"},
		{series.Temperature, "temperature"},
		{series.Momentum, "|total momentum|"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	r, err := traj.Open(st.TrajPath(runID))
	if err != nil {
		return err
	}
	defer r.Close()

	frames, err := r.ReadAll()
	if err != nil {
		return err
	}

	msd, err := analysis.MSD(frames, meta.Box)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s (%d frames)\n\n", meta.ID, len(frames))
	fmt.Println(asciigraph.Plot(msd,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean-square displacement"),
	))
	fmt.Println()

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() < 4 {
		return nil
	}

	ps := analysis.PowerSpectrum(series.Kinetic)
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy power spectrum"),
	))

	idx, _ := analysis.DominantFrequency(ps)
	span := series.Times[series.Len()-1] - series.Times[0]
	if span > 0 && idx > 0 {
		freq := float64(idx) / span
		fmt.Printf("\ndominant frequency: %.4g (period %.4g)\n", freq, 1/freq)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, series)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "kinetic", "potential", "total", "temperature", "momentum"}); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		row := []string{
			strconv.FormatFloat(series.Times[i], 'f', 6, 64),
			strconv.FormatFloat(series.Kinetic[i], 'f', 6, 64),
			strconv.FormatFloat(series.Potential[i], 'f', 6, 64),
			strconv.FormatFloat(series.Total[i], 'f', 6, 64),
			strconv.FormatFloat(series.Temperature[i], 'f', 6, 64),
			strconv.FormatFloat(series.Momentum[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	if len(names) == 0 {
		fmt.Println("no presets")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tN\tBOX\tTEMP\tDT\tSTEPS\tTHERMO")
	for _, name := range names {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.4g\t%d\t%s\n",
			name, p.Particles, p.Box, p.Temperature, p.Dt, p.Steps, p.Thermostat.Kind)
	}
	return w.Flush()
}

func benchKernel(cmd *cobra.Command, args []string) error {
	sizes := []int{32, 64, 128, 256}
	workerCounts := []int{1, 0}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, wk := range workerCounts {
			cfg := config.Default()
			cfg.Particles = n
			cfg.Steps = steps
			cfg.Seed = 42
			cfg.Workers = wk
			cfg.DumpInterval = cfg.Steps + 1
			cfg.SampleInterval = cfg.Steps + 1

			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background(), nil)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			label := strconv.Itoa(wk)
			if wk == 0 {
				label = "cpu"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\n",
				n, label, result.StepsTaken, elapsed.Round(time.Millisecond),
				float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.System(), exp.Field(), exp.Integrator(), exp.Thermostat(),
		cfg.Steps, stepsPerTick, frameRate)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
