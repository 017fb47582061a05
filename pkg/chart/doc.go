// Package chart is the reactive chart component: it owns a config, a data
// series and a mounted [surface.Surface], and re-renders whenever one of them
// changes.
//
// # Lifecycle
//
//	c, _ := chart.New(cfg, chart.Options{Logger: logger})
//	c.Mount(surface.New(cfg.Width, cfg.Height))
//	c.SetData(series)      // pass: scales → layout → guides → reconcile
//	for c.Tick(time.Now()) {
//	    // draw c.Surface()
//	}
//	c.Unmount()            // cancels transitions, releases the surface
//
// Every change notification (SetData, SetConfig, Resize) triggers a pass.
// A pass rebuilds the scales from the latest data and surface size, runs the
// layout for the configured kind, builds axes and legend, and hands both
// layers to their reconcilers. Elements keep their identity across passes by
// key, so a persisting bar animates from where it is now to its new target.
//
// # Failure
//
// A pass that fails (a log domain containing zero, two primitives with the
// same key, a zero-size surface) leaves the previous scene untouched and is
// reported through [Chart.Err] and the returned error. The next notification
// tries again.
//
// # Update policies
//
// Under [Retarget] (the default) each notification runs a pass immediately.
// Under [Coalesce] notifications are held until no new one has arrived for
// CoalesceMs; [Chart.Tick] then runs a single pass with the latest state.
package chart
