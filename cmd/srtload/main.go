// Command srtload reads the final pipeline CSVs and loads them into the
// configured database.
package main

import (
	"context"
	"flag"
	"log"

	"srtingest/internal/loader"
	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

func main() {
	configPath := flag.String("config", "pipeline.yaml", "path to the pipeline config file")
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("srtload: ")

	cfg, err := pipeline.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	patients, err := table.ReadFile(cfg.OutputPath(pipeline.FilePatients), pipeline.ColPatientID)
	if err != nil {
		log.Fatal(err)
	}
	definitions, err := table.ReadFile(cfg.OutputPath(pipeline.FileCompliantDefs),
		pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription)
	if err != nil {
		log.Fatal(err)
	}
	values, err := table.ReadFile(cfg.OutputPath(pipeline.FileSourcedValues),
		pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue, pipeline.ColSource)
	if err != nil {
		log.Fatal(err)
	}

	ldr, err := loader.Open(ctx, loader.Config{
		Driver:      cfg.Load.Driver,
		SQLitePath:  cfg.Load.SQLitePath,
		PostgresDSN: cfg.Load.PostgresDSN,
		BatchSize:   cfg.Load.BatchSize,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer ldr.Close()

	stats, err := ldr.LoadAll(ctx, patients, definitions, values)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d patients, %d definitions, %d values", stats.Patients, stats.Definitions, stats.Values)
}
