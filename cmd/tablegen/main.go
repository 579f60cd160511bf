// Command tablegen runs the second pipeline stage: from the combined
// long-format CSV it derives the patient identifier, field definition and
// field value tables.
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
	log.SetPrefix("tablegen: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	runner, err := run.NewFromEnv(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	runner.Metrics = metrics.NewExpvarRecorder("tablegen")
	if err := runner.TablesStage(ctx); err != nil {
		log.Fatal(err)
	}
}
