package muongun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
)

// Run evaluates every integral and sphere query in cfg on a bounded worker
// pool. A failed integral does not stop the others; all failures are joined
// into the returned error and the report is returned either way.
func Run(ctx context.Context, cfg *Config, logger *zap.Logger, metrics *Metrics) (*Report, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	def := cfg.Options()
	report := &Report{Integrals: make([]IntegralResult, len(cfg.Integrals))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ic := range cfg.Integrals {
		i, ic := i, ic
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Integrals[i] = runIntegral(ic, def, logger, metrics)
			return nil
		})
	}

	xs := make([][]IntersectionResult, len(cfg.Spheres))
	for i, sc := range cfg.Spheres {
		i, sc := i, sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runSphere(sc, metrics)
			if err != nil {
				return err
			}
			xs[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	for _, x := range xs {
		report.Intersections = append(report.Intersections, x...)
	}

	var errs []error
	for _, ir := range report.Integrals {
		if ir.Err != nil {
			errs = append(errs, fmt.Errorf("integral %q: %w", ir.Name, ir.Err))
		}
	}
	return report, errors.Join(errs...)
}

func runIntegral(ic IntegralCfg, def integrate.Options, logger *zap.Logger, metrics *Metrics) IntegralResult {
	out := IntegralResult{Name: ic.Name, Integrand: ic.Integrand, Low: ic.Low, High: ic.High}
	f, err := ic.Build()
	if err != nil {
		out.Err = err
		return out
	}
	opts := ic.Options(def)
	start := time.Now()
	out.Result, out.Err = integrateAny(f, ic.Low, ic.High, opts)
	out.Elapsed = time.Since(start)
	metrics.ObserveIntegration(ic.Integrand, out.Result, out.Err, out.Elapsed)

	fields := []zap.Field{
		zap.String("name", ic.Name),
		zap.String("integrand", ic.Integrand),
		zap.Float64("value", out.Result.Value),
		zap.Float64("abserr", out.Result.AbsErr),
		zap.Int("evals", out.Result.Evals),
		zap.Int("regions", out.Result.Regions),
		zap.Duration("elapsed", out.Elapsed),
	}
	if out.Err != nil {
		logger.Warn("integration failed", append(fields, zap.Error(out.Err))...)
	} else {
		logger.Debug("integration done", fields...)
	}
	return out
}

func runSphere(sc SphereCfg, metrics *Metrics) ([]IntersectionResult, error) {
	s, err := sc.Build()
	if err != nil {
		return nil, err
	}
	out := make([]IntersectionResult, 0, len(sc.Rays))
	for i, ray := range sc.Rays {
		p, dir := ray.Vecs()
		tNear, tFar := s.GetIntersection(p, dir)
		xr := IntersectionResult{Sphere: sc.Name, Ray: i, Point: p, Dir: dir, TNear: tNear, TFar: tFar}
		metrics.ObserveIntersection(xr.Hit())
		out = append(out, xr)
	}
	return out, nil
}

// RunFile loads the config at path, runs it and writes the report to w.
func RunFile(ctx context.Context, path string, workers int, logger *zap.Logger, metrics *Metrics, w io.Writer) error {
	cfg, err := LoadConfig(path, logger)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	start := time.Now()
	report, runErr := Run(ctx, cfg, logger, metrics)
	logger.Debug("run finished",
		zap.Int("integrals", len(report.Integrals)),
		zap.Int("intersections", len(report.Intersections)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err := report.Write(w); err != nil {
		return err
	}
	return runErr
}
