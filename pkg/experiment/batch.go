/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package experiment

/*****************************************************************************************************************/

import (
	"context"

	"github.com/observerly/iad/internal/runid"
	"github.com/observerly/iad/pkg/gridcache"
	"github.com/observerly/iad/pkg/sample"

	"golang.org/x/sync/errgroup"
)

/*****************************************************************************************************************/

// Row is one wavelength's worth of instrument measurements from a parsed
// .rxt table.
type Row struct {
	Wavelength float64
	Experiment Experiment
}

/*****************************************************************************************************************/

// RowResult pairs a Row's recovered estimate with its originating
// wavelength, in the same order as the input Row slice.
type RowResult struct {
	Wavelength float64
	Estimate   Estimate
}

/*****************************************************************************************************************/

// RunBatch fans out one inverse search per wavelength row across goroutines:
// batch calls over an array of wavelengths are embarrassingly parallel, each
// with its own sample.Driver so quadrature and redistribution caches are
// never shared across concurrent tasks, but the grid cache is shared
// read-only. The result slice preserves input order regardless of
// completion order.
func RunBatch(ctx context.Context, rows []Row, grid *gridcache.Grid) ([]RowResult, string, error) {
	tag := runid.New()

	results := make([]RowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)

	for i, row := range rows {
		i, row := i, row

		g.Go(func() error {
			driver := sample.NewDriver()

			rowCtx := gctx
			if row.Experiment.Timeout > 0 {
				var cancel context.CancelFunc
				rowCtx, cancel = context.WithTimeout(gctx, row.Experiment.Timeout)
				defer cancel()
			}

			estimate, err := Invert(rowCtx, row.Experiment, driver, grid)
			if err != nil {
				return err
			}

			results[i] = RowResult{Wavelength: row.Wavelength, Estimate: estimate}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, tag, err
	}

	return results, tag, nil
}
