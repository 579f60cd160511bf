// Command srtpipeline runs all four stages in order against one config file.
// When metrics_addr is configured it exposes Prometheus metrics for the
// duration of the run.
package main

import (
	"context"
	"flag"
	"log"

	"srtingest/internal/metrics"
	"srtingest/internal/pipeline"
	"srtingest/internal/pipeline/run"
)

func main() {
	configPath := flag.String("config", "pipeline.yaml", "path to the pipeline config file")
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("srtpipeline: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := run.NewFromEnv(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.MetricsAddr != "" {
		rec := metrics.NewPrometheusRecorder()
		runner.Metrics = rec
		go func() {
			if err := rec.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	} else {
		runner.Metrics = metrics.NewExpvarRecorder("srtpipeline")
	}

	log.Printf("run %s starting", runner.RunID())
	if err := runner.RunAll(ctx); err != nil {
		log.Fatal(err)
	}
	log.Printf("run %s complete", runner.RunID())
}
