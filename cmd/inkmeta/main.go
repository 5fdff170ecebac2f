package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkmeta/internal/config"
	"inkmeta/internal/pipeline"
	"inkmeta/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := config.InitLogger(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()

	cmd := os.Args[1]
	switch cmd {
	case "scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", cfg.ReportDir, "directory of saved report pages")
		dbPath := fs.String("db", cfg.DBPath, "sqlite store to rebuild")
		strict := fs.String("strict", "", "true|false, stop on the first malformed report")
		_ = fs.Parse(os.Args[2:])
		cfg.ReportDir = *dir
		cfg.DBPath = *dbPath
		cfg.StrictMode = config.ParseBool(*strict, cfg.StrictMode)

		res, err := pipeline.NewScrapeService(cfg, logger).Run()
		must(err)
		for _, f := range res.Failed {
			fmt.Printf("skipped %s: %v\n", f.Archetype, f.Err)
		}
		fmt.Printf("scrape done documents=%d records=%d corrected=%d db=%s\n", res.Documents, res.Inserted, res.Corrected, cfg.DBPath)
	case "inspect":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "report file path or raw html")
		inType := fs.String("type", "file", "file|html")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("--input", *input))

		res, err := pipeline.NewPipeline(cfg, logger).InspectInput(*inType, *input)
		must(err)
		for _, r := range res.Records {
			fmt.Printf("%d\t%s\t%s\t%s\n", r.Quantity, r.SetCode, r.CardNumber, r.ImageSrc)
		}
		fmt.Printf("records=%d key_cards=%d less_frequent=%d below_threshold=%d unresolved=%d omitted=%d\n",
			len(res.Records), res.Primary, res.Secondary, res.BelowThreshold, res.Unresolved, res.Omitted)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite store")
		out := fs.String("out", filepath.Join(cfg.OutputDir, "key_cards.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		db, err := openExisting(*dbPath)
		must(err)
		defer db.Close()
		rows, err := db.ListUsage()
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no key_cards rows in %s", *dbPath))
		}
		must(pipeline.ExportUsageToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "summary":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite store")
		_ = fs.Parse(os.Args[2:])

		db, err := openExisting(*dbPath)
		must(err)
		defer db.Close()
		counts, err := db.CountByArchetype()
		must(err)
		for _, c := range counts {
			fmt.Printf("%-40s records=%d copies=%d\n", c.Archetype, c.Records, c.Copies)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func openExisting(path string) (*storage.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store not found at %s, run scrape first", path)
	}
	return storage.Open(path)
}

func usage() {
	fmt.Println("usage: inkmeta <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape [--dir=./meta_decks] [--db=./inkdecks_meta_cards.db] [--strict=true|false]")
	fmt.Println("  inspect --input=... [--type=file|html]")
	fmt.Println("  export:xlsx [--db=...] [--out=./out/key_cards.xlsx]")
	fmt.Println("  summary [--db=...]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
