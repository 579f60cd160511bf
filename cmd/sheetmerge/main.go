// Command sheetmerge runs the first pipeline stage: it merges the configured
// workbook sheets into the combined long-format CSV.
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
	log.SetPrefix("sheetmerge: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	runner, err := run.NewFromEnv(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	runner.Metrics = metrics.NewExpvarRecorder("sheetmerge")
	if err := runner.MergeStage(ctx); err != nil {
		log.Fatal(err)
	}
}
