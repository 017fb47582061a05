package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// epoch is the start time of offscreen charts. Settled output does not
// depend on it.
var epoch = time.Unix(0, 0).UTC()

// BuildScene mounts a chart for opts on a fresh offscreen surface, applies
// the data and settles every transition. It returns the surface holding
// the final frame and the warnings of the last pass.
func BuildScene(ctx context.Context, opts Options) (*surface.Surface, []data.Warning, error) {
	if err := opts.ValidateForScene(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c, err := chart.New(opts.Config, chart.Options{
		Clock:  scene.NewManualClock(epoch),
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	cfg := c.Config()
	s := surface.New(cfg.Width, cfg.Height, surface.WithBackground(cfg.Background))
	if err := c.Mount(s); err != nil {
		return nil, nil, err
	}
	if err := c.SetData(opts.Data); err != nil {
		return nil, nil, err
	}
	if err := c.Settle(); err != nil {
		return nil, nil, err
	}
	return s, c.LastPass().Warnings, nil
}
