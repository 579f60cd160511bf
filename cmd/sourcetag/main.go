// Command sourcetag runs the final pipeline stage: it appends the provenance
// column to the compliant field value table.
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
	log.SetPrefix("sourcetag: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	runner, err := run.NewFromEnv(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	runner.Metrics = metrics.NewExpvarRecorder("sourcetag")
	if err := runner.SourceStage(ctx); err != nil {
		log.Fatal(err)
	}
}
