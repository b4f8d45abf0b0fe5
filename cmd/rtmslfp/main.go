package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rtmslfp/adapters/netrecord"
	"rtmslfp/adapters/render"
	"rtmslfp/adapters/simnet"
	"rtmslfp/app"
	"rtmslfp/domain/stim"
	"rtmslfp/internal/config"
	"rtmslfp/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rtmslfp",
		Short: "rTMS pulse scheduling and LFP/spike analysis for L2/3 cortical simulations",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.Setup()
		},
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newPlanCmd(),
		newStimCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	opts := app.DefaultAnalysisOptions()
	var pre, post []float64

	cmd := &cobra.Command{
		Use:   "analyze <record.json> [output-prefix]",
		Short: "Analyze a persisted simulation record and render the diagnostic figure",
		Long: `Load a NetPyNE-style JSON simulation record, compute per-population
firing rates and pre/post-TMS LFP spectra, print a textual summary and write
the multi-panel diagnostic figure as <output-prefix>.png.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordPath := args[0]
			outputPrefix := "figures/rtms_lfp_analysis"
			if len(args) > 1 {
				outputPrefix = args[1]
			}

			if _, err := os.Stat(recordPath); err != nil {
				return fmt.Errorf("record file %s: %w", recordPath, err)
			}
			if len(pre) == 2 {
				opts.PreWindowMs = [2]float64{pre[0], pre[1]}
			}
			if len(post) == 2 {
				opts.PostWindowMs = [2]float64{post[0], post[1]}
			}

			analysis := app.NewAnalysisService(netrecord.NewStore())
			report, err := analysis.Analyze(recordPath, opts)
			if err != nil {
				return err
			}

			reports := app.NewReportService(render.NewRenderer())
			reports.WriteSummary(cmd.OutOrStdout(), report)

			figPath, err := reports.RenderFigure(report, outputPrefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nFigure written to %s\n", figPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Electrode, "electrode", opts.Electrode, "LFP electrode index for traces and spectra")
	cmd.Flags().Float64Var(&opts.BinSizeMs, "bin-ms", opts.BinSizeMs, "Firing-rate histogram bin width in ms")
	cmd.Flags().Float64SliceVar(&pre, "pre", []float64{opts.PreWindowMs[0], opts.PreWindowMs[1]}, "Pre-TMS comparison window as start,end in ms")
	cmd.Flags().Float64SliceVar(&post, "post", []float64{opts.PostWindowMs[0], opts.PostWindowMs[1]}, "Post-TMS comparison window as start,end in ms")
	cmd.Flags().IntVar(&opts.SegmentLength, "nperseg", opts.SegmentLength, "Welch FFT segment length in samples")

	return cmd
}

func newPlanCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the pulse schedule a protocol file produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			protocol, err := config.Load(configPath)
			if err != nil {
				return err
			}

			cfg := protocol.StimConfig()
			out := cmd.OutOrStdout()
			if !cfg.Enabled() {
				fmt.Fprintln(out, "Protocol has no TMS block; nothing to schedule.")
				return nil
			}

			pulses := stim.SchedulePulses(cfg)
			fmt.Fprintf(out, "Protocol: %g V/m at %g Hz, window [%g, %g) ms, pulse width %g ms\n",
				cfg.FieldVPerM, cfg.FrequencyHz, cfg.WindowStartMs, cfg.WindowEndMs, cfg.PulseWidthMs)
			fmt.Fprintf(out, "Target population: %s\n", cfg.TargetPop)
			fmt.Fprintf(out, "Pulses: %d, interval %g ms\n\n", cfg.PulseCount(), cfg.PulseIntervalMs())

			for i, p := range pulses {
				fmt.Fprintf(out, "  pulse %2d: onset %8.2f ms  phase %5.2f ms  amplitude %+.4f / %+.4f nA\n",
					i, p.OnsetMs, p.PhaseDurMs, p.AmplitudeNA, p.SecondPhaseAmplitudeNA())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "protocol.yaml", "Protocol YAML file")
	return cmd
}

func newStimCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stim",
		Short: "Dry-run a stimulation protocol against an in-memory network",
		Long: `Build an in-memory network from the protocol's population table and
apply the biphasic pulse train to it. Useful for checking how many current
sources a protocol attaches before running a real simulation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			protocol, err := config.Load(configPath)
			if err != nil {
				return err
			}

			network := simnet.FromCounts(protocol.Populations, protocol.Order(),
				[]string{"soma_0", "apic_0", "dend_0"})

			handles, err := app.NewStimulationService().Apply(network, protocol.StimConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Network: %d cells across %d populations\n",
				len(network.Cells()), len(protocol.Populations))
			fmt.Fprintf(out, "Attached %d current sources (%d pulses x 2 phases per target cell)\n",
				len(handles), protocol.StimConfig().PulseCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "protocol.yaml", "Protocol YAML file")
	return cmd
}
