// Command srtcompliant runs the third pipeline stage: it sanitizes field
// names and maps inferred types onto the SRT vocabulary, emitting the
// compliant definition and value tables.
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
	log.SetPrefix("srtcompliant: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	runner, err := run.NewFromEnv(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	runner.Metrics = metrics.NewExpvarRecorder("srtcompliant")
	if err := runner.ComplianceStage(ctx); err != nil {
		log.Fatal(err)
	}
}
