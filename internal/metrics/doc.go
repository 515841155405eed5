// Package metrics records build metrics for lotbuilder runs.
//
// Components receive a Recorder. NoopRecorder is the default and does
// nothing; PrometheusRecorder keeps counters and histograms in a registry
// that can be dumped to a node_exporter textfile after a run:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	gen := site.NewGenerator(cfg).WithRecorder(rec)
//	_, err := gen.Run(ctx)
//	_ = rec.WriteTextfile("/var/lib/node_exporter/lotbuilder.prom")
package metrics
