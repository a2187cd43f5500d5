package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"efprobe/internal/config"
	"efprobe/internal/driver"
	"efprobe/internal/engine"
	"efprobe/internal/field"
	"efprobe/internal/fragment"
	"efprobe/internal/mdi"
	"efprobe/internal/storage"
	"efprobe/internal/traj"
	"efprobe/internal/viz"
)

var (
	dataDir    string
	mdiOptions string
	snapshot   string
	probeList  string
	byMolecule bool
	byResidue  bool
	configFile string
	fieldKind  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "efprobe",
		Short: "electric field analysis driver for MDI engines",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run store directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "stream a trajectory through the engine and store field tables",
		RunE:  runDriver,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live per-probe field magnitude view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame probe field magnitudes from a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&fieldKind, "kind", "dfield", "field kind (dfield or ufield)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mdiOptions, "mdi", "", "communicator configuration string")
	cmd.Flags().StringVar(&snapshot, "snap", "", "trajectory snapshot file")
	cmd.Flags().StringVar(&probeList, "probes", "", "whitespace-separated probe atom ids (1-based)")
	cmd.Flags().BoolVar(&byMolecule, "bymol", false, "aggregate field contributions by molecule")
	cmd.Flags().BoolVar(&byResidue, "byres", false, "aggregate field contributions by residue")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// applyConfig folds a yaml config under the CLI flags: flags set on the
// command line win.
func applyConfig(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cmd.Flags().Changed("mdi") {
		mdiOptions = cfg.MDI
	}
	if !cmd.Flags().Changed("snap") {
		snapshot = cfg.Snapshot
	}
	if !cmd.Flags().Changed("probes") {
		probeList = cfg.Probes
	}
	if !cmd.Flags().Changed("bymol") {
		byMolecule = cfg.ByMolecule
	}
	if !cmd.Flags().Changed("byres") {
		byResidue = cfg.ByResidue
	}
	if cfg.DataDir != "" && !cmd.Flags().Changed("data") {
		dataDir = cfg.DataDir
	}
	return nil
}

func parseProbes(s string) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no probe atoms given")
	}
	probes := make([]int, len(fields))
	for i, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad probe atom %q: %w", f, err)
		}
		probes[i] = p
	}
	return probes, nil
}

// setup validates configuration, accepts the engine connection and opens the
// trajectory. Configuration conflicts are rejected before any engine I/O.
func setup(cmd *cobra.Command) (*driver.Driver, *traj.Reader, []int, error) {
	if err := applyConfig(cmd); err != nil {
		return nil, nil, nil, err
	}

	mode, err := fragment.ParseMode(byMolecule, byResidue)
	if err != nil {
		return nil, nil, nil, err
	}
	probes, err := parseProbes(probeList)
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := mdi.ParseOptions(mdiOptions)
	if err != nil {
		return nil, nil, nil, err
	}

	frames, err := traj.Open(snapshot)
	if err != nil {
		return nil, nil, nil, err
	}

	fmt.Printf("probes: %v\n", probes)
	fmt.Printf("waiting for engine on port %d...\n", opts.Port)
	comm, err := mdi.Accept(opts)
	if err != nil {
		frames.Close()
		return nil, nil, nil, err
	}
	client, err := engine.Identify([]mdi.Comm{comm})
	if err != nil {
		comm.Close()
		frames.Close()
		return nil, nil, nil, err
	}
	name, _ := client.Name()
	fmt.Printf("engine name: %s\n", name)

	return driver.New(client, frames, mode, probes), frames, probes, nil
}

func runDriver(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	drv, frames, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer frames.Close()

	start := time.Now()
	res, err := drv.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(snapshot, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("natoms: %d  npoles: %d\n", res.Natoms, res.Npoles)
	fmt.Printf("frames: %d  fragments: %d (%s mode)\n", res.Frames, len(res.Fragments), res.Mode)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	drv, frames, probes, err := setup(cmd)
	if err != nil {
		return err
	}
	defer frames.Close()

	obs := viz.NewObserver()
	drv.AddObserver(obs)

	type outcome struct {
		res *driver.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := drv.Run(context.Background())
		obs.Finish(err)
		done <- outcome{res, err}
	}()

	p := tea.NewProgram(viz.NewModel(probes, obs))
	if _, err := p.Run(); err != nil {
		return err
	}
	obs.Drain()

	out := <-done
	if out.err != nil {
		return out.err
	}
	runID, err := st.Save(snapshot, out.res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
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
	fmt.Fprintln(w, "ID\tENGINE\tTIME\tMODE\tPROBES\tFRAMES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Engine,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			len(run.Probes),
			run.Frames,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	kind := field.Kind(fieldKind)
	if kind != field.DField && kind != field.UField {
		return fmt.Errorf("unknown field kind %q", fieldKind)
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadTable(runID, kind)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, %s mode, %d frames)\n\n", meta.ID, kind, meta.Mode, meta.Frames)

	for _, probe := range meta.Probes {
		series := viz.Magnitudes(table, probe)
		if len(series) == 0 {
			continue
		}
		caption := fmt.Sprintf("probe atom %d  |E| (a.u.)", probe)
		if len(series) > 1 {
			graph := asciigraph.Plot(series,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(caption),
			)
			fmt.Println(graph)
		}
		mean := stat.Mean(series, nil)
		sd := stat.StdDev(series, nil)
		fmt.Printf("%s: mean %.6g, stddev %.6g over %d frames\n\n", caption, mean, sd, len(series))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
