package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
	"github.com/lukaszgryglicki/muongun/internal/muongun"
	"github.com/lukaszgryglicki/muongun/internal/surfaces"
)

var (
	verbose bool
	profile string
	workers int

	logger  *zap.Logger
	metrics *muongun.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "muongun",
	Short: "Adaptive integration and surface geometry for muon flux studies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = muongun.NewLogger(verbose || os.Getenv("MUONGUN_DEBUG") != "")
		if err != nil {
			return err
		}
		metrics = muongun.NewMetrics(muongun.MetricNamespace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			metrics.Log(logger)
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Evaluate every integral and sphere query in a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := os.Getenv("MUONGUN_CONFIG")
		if cfg == "" {
			cfg = muongun.DefaultConfig
		}
		if len(args) > 0 {
			cfg = args[0]
		}
		if profile != "" {
			f, err := os.Create(profile)
			if err != nil {
				return err
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				_ = f.Close()
				return err
			}
			defer func() {
				pprof.StopCPUProfile()
				_ = f.Close()
			}()
		}
		return muongun.RunFile(cmd.Context(), cfg, workers, logger, metrics, cmd.OutOrStdout())
	},
}

var (
	low, high []float64
	params    map[string]string
	tol       integrate.Options
)

var integrateCmd = &cobra.Command{
	Use:   "integrate <integrand>",
	Short: "Integrate a named integrand over a box",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ic := muongun.IntegralCfg{Name: args[0], Integrand: args[0], Low: low, High: high, Params: map[string]float64{}}
		for k, v := range params {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("param %s: %w", k, err)
			}
			ic.Params[k] = f
		}
		if err := tol.Validate(); err != nil {
			return err
		}
		ic.Tolerance = muongun.Tolerance(tol)
		if _, err := ic.Build(); err != nil {
			return err
		}
		cfg := &muongun.Config{Workers: 1, Integrals: []muongun.IntegralCfg{ic}}
		report, err := muongun.Run(cmd.Context(), cfg, logger, metrics)
		if werr := report.Write(cmd.OutOrStdout()); werr != nil {
			return werr
		}
		return err
	},
}

var (
	depth, radius float64
	point, dir    []float64
)

var intersectCmd = &cobra.Command{
	Use:   "intersect",
	Short: "Intersect a ray with a sphere centred on the vertical axis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(point) != 3 || len(dir) != 3 {
			return fmt.Errorf("--point and --dir need 3 components, got %d and %d", len(point), len(dir))
		}
		sc := muongun.SphereCfg{
			SphereFields: surfaces.SphereFields{OriginDepth: depth, Radius: radius},
			Name:         "sphere",
			Rays:         []muongun.RayCfg{{Point: [3]float64(point), Direction: [3]float64(dir)}},
		}
		cfg := &muongun.Config{Workers: 1, Spheres: []muongun.SphereCfg{sc}}
		report, err := muongun.Run(cmd.Context(), cfg, logger, metrics)
		if err != nil {
			return err
		}
		return report.Write(cmd.OutOrStdout())
	},
}

var integrandsCmd = &cobra.Command{
	Use:   "integrands",
	Short: "List the named integrands",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range muongun.IntegrandNames() {
			spec := muongun.Integrands[name]
			arity := strconv.Itoa(spec.Arity)
			if spec.Arity == 0 {
				arity = "1-4"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-4s %s\n", name, arity, spec.Doc)
		}
	},
}

func init() {
	// a missing .env is fine
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd.Flags().StringVar(&profile, "profile", os.Getenv("MUONGUN_PROFILE"), "write a CPU profile to this file")
	runCmd.Flags().IntVarP(&workers, "workers", "w", envInt("MUONGUN_WORKERS"), "concurrent jobs (0 = one per CPU)")

	integrateCmd.Flags().Float64SliceVar(&low, "low", nil, "lower bounds, one per dimension")
	integrateCmd.Flags().Float64SliceVar(&high, "high", nil, "upper bounds, one per dimension")
	integrateCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "integrand parameters, e.g. -p index=2.7")
	integrateCmd.Flags().Float64Var(&tol.EpsAbs, "epsabs", integrate.DefaultEpsAbs, "absolute error target")
	integrateCmd.Flags().Float64Var(&tol.EpsRel, "epsrel", integrate.DefaultEpsRel, "relative error target")
	integrateCmd.Flags().IntVar(&tol.Limit, "limit", 0, "subinterval (1-D) or evaluation (N-D) budget, 0 = default")
	_ = integrateCmd.MarkFlagRequired("low")
	_ = integrateCmd.MarkFlagRequired("high")

	intersectCmd.Flags().Float64Var(&depth, "depth", 0, "depth of the sphere centre on the vertical axis")
	intersectCmd.Flags().Float64Var(&radius, "radius", 0, "sphere radius")
	intersectCmd.Flags().Float64SliceVar(&point, "point", []float64{0, 0, 0}, "ray start x,y,z")
	intersectCmd.Flags().Float64SliceVar(&dir, "dir", []float64{0, 0, 1}, "ray direction x,y,z")

	rootCmd.AddCommand(runCmd, integrateCmd, intersectCmd, integrandsCmd)
}

func envInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
