package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	catalogreader "github.com/addrkit/catalog-reader"
	"github.com/addrkit/catalog-reader/binfmt"
	"github.com/addrkit/catalog-reader/export"
)

func main() {
	var (
		catalogFile = flag.String("catalog", "", "Path to catalog file (json or binary)")
		outFile     = flag.String("o", "assets.json", "Export path for the asset report")
		list        = flag.Bool("list", false, "List locations as a table and exit")
		noExport    = flag.Bool("no-export", false, "Skip writing the asset report")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose decode logging")
	)
	flag.Parse()

	if *catalogFile == "" && flag.NArg() > 0 {
		*catalogFile = flag.Arg(0)
	}
	if *catalogFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: catdump -catalog <file> [-o assets.json] [-list] [-v]")
		fmt.Fprintln(os.Stderr, "       catdump -catalog <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		binfmt.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(*catalogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*catalogFile, *outFile, *list, *noExport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogFile, outFile string, listOnly, noExport bool) error {
	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	format := catalogreader.DetectFormat(data)
	cat, err := catalogreader.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Printf("Catalog: %s (%s)\n", catalogFile, format)
	fmt.Printf("Schema version: %d\n", cat.SchemaVersion)
	fmt.Printf("Locator ID: %s\n", cat.LocatorID)
	fmt.Printf("Locations: %d\n", len(cat.Locations))
	fmt.Printf("Resource providers: %d\n", len(cat.ResourceProviders))

	if listOnly {
		fmt.Println()
		fmt.Println(locationTable(cat))
		return nil
	}

	if noExport {
		return nil
	}
	report, err := export.Marshal(cat)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(outFile, report, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", outFile)
	return nil
}
