package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/field-triage/internal/config"
	"github.com/danielpatrickdp/field-triage/internal/store"
)

// #region main
func main() {
	configPath := flag.String("config", config.Path(), "path to YAML or JSON settings")
	input := flag.String("input", "", "patients JSON document ({\"patients\": [...]})")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-patients --input patients.json [--config file]")
		os.Exit(2)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config: %v (continuing with defaults)", err)
	}

	st, err := store.Open(settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	n, err := st.ImportPatients(context.Background(), f)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	fmt.Printf("Imported %d patient record(s) into %s (%s)\n", n, settings.Database.DSN, settings.Database.Driver)
}

// #endregion main
