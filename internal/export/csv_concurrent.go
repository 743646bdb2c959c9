package export

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/sampler"
	"github.com/emrzvv/rcg/internal/stats"
)

const flushEvery = 800 * time.Millisecond

// StreamSamples writes batches to path as they arrive until batches is
// closed or ctx is done. Everything received is also collected, as ratios,
// for the run summary. With beta set the file holds y/(1+y).
func StreamSamples(ctx context.Context, path string, beta bool, batches <-chan sampler.Batch) (*stats.Collector, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := "y"
	if beta {
		header = "b"
	}
	if err := cw.Write([]string{"i", header}); err != nil {
		return nil, err
	}

	col := &stats.Collector{}
	i := 0
	write := func(b sampler.Batch) {
		col.Add(b)
		values := b.Values
		if beta {
			values = density.ToBeta(append([]float64(nil), values...))
		}
		for _, v := range values {
			_ = cw.Write([]string{strconv.Itoa(i), formatFloat(v)})
			i++
		}
	}

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-batches:
			if !ok {
				cw.Flush()
				return col, cw.Error()
			}
			write(b)
		case <-ticker.C:
			cw.Flush()
		case <-ctx.Done():
			// дописываем то, что уже в канале
			for {
				select {
				case b, ok := <-batches:
					if ok {
						write(b)
						continue
					}
				default:
				}
				break
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return col, err
			}
			return col, ctx.Err()
		}
	}
}
