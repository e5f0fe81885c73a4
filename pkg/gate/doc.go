// Package gate ties schema loading, validation, and telemetry into the
// operational surface of confgate: point it at a schema directory and a set
// of config files and it checks them, on demand or continuously.
//
// A Gate owns one loaded schema store at a time. Reload builds a complete
// replacement store before swapping it in, so a broken schema edit never
// takes down checking: the previous set keeps serving and the reload error
// is reported through telemetry.
//
// # Usage
//
// Checking a set of config files once:
//
//	cfg, err := gate.LoadConfig("confgate.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g, err := gate.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := g.CheckAll(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range results {
//	    if !r.Passed() {
//	        fmt.Print(r.Report)
//	    }
//	}
//
// Watch mode rechecks everything whenever a schema or config file changes,
// debounced so editor save bursts trigger one recheck:
//
//	err = g.Watch(ctx, func(r gate.Result) {
//	    if !r.Passed() {
//	        fmt.Print(r.Report)
//	    }
//	})
//
// # Results
//
// A Result distinguishes the two failure tiers. Err is set when the check
// could not run at all: unreadable file, malformed YAML, or a schema
// integrity error such as a cyclic reference. Violations in a readable
// config are not errors; they come back in Report, sorted and ready to
// print or serialize.
package gate
