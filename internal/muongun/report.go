package muongun

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
	"github.com/lukaszgryglicki/muongun/internal/surfaces"
)

type IntegralResult struct {
	Name      string
	Integrand string
	Low, High []float64
	Result    integrate.Result
	Err       error
	Elapsed   time.Duration
}

type IntersectionResult struct {
	Sphere      string
	Ray         int
	Point, Dir  r3.Vec
	TNear, TFar float64
}

func (r IntersectionResult) Hit() bool { return surfaces.Intersects(r.TNear, r.TFar) }

// Report holds results in config order.
type Report struct {
	Integrals     []IntegralResult
	Intersections []IntersectionResult
}

func (r *Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(r.Integrals) > 0 {
		fmt.Fprintln(tw, "INTEGRAL\tINTEGRAND\tBOUNDS\tVALUE\tABSERR\tEVALS\tSTATUS")
		for _, ir := range r.Integrals {
			status := "ok"
			if ir.Err != nil {
				status = ir.Err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.10g\t%.3g\t%d\t%s\n",
				ir.Name, ir.Integrand, bounds(ir.Low, ir.High),
				ir.Result.Value, ir.Result.AbsErr, ir.Result.Evals, status)
		}
	}
	if len(r.Intersections) > 0 {
		if len(r.Integrals) > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, "SPHERE\tRAY\tPOINT\tDIRECTION\tT_NEAR\tT_FAR")
		for _, xr := range r.Intersections {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.10g\t%.10g\n",
				xr.Sphere, xr.Ray, vec(xr.Point), vec(xr.Dir), xr.TNear, xr.TFar)
		}
	}
	return tw.Flush()
}

func bounds(low, high []float64) string {
	parts := make([]string, len(low))
	for i := range low {
		parts[i] = fmt.Sprintf("[%g,%g]", low[i], high[i])
	}
	return strings.Join(parts, "x")
}

func vec(v r3.Vec) string { return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z) }
