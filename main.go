package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/insightdelivered/extrato-ofx/internal/api"
	"github.com/insightdelivered/extrato-ofx/internal/extract"
	"github.com/insightdelivered/extrato-ofx/internal/extractor"
	"github.com/insightdelivered/extrato-ofx/internal/ofx"
	"github.com/insightdelivered/extrato-ofx/internal/writer"
)

const version = "1.0.0"

func main() {
	bankFlag := flag.String("bank", "", "Bank layout id (see -list)")
	outputFlag := flag.String("output", "", "Output file path (defaults to extrato_<bank>_<timestamp>.ofx next to the input)")
	formatFlag := flag.String("format", "ofx", "Output format: ofx or csv")
	listFlag := flag.Bool("list", false, "List supported banks and exit")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API server")
	addrFlag := flag.String("addr", ":8080", "HTTP listen address (with -serve)")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Extrato PDF to OFX Converter
by Insight Delivered

Converts Brazilian bank statement PDFs into OFX 1.02 files.

Usage:
  extrato-ofx -bank <id> [flags] <input.pdf> [input2.pdf ...]
  extrato-ofx -list
  extrato-ofx -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a Sicoob statement
  extrato-ofx -bank sicoob extrato.pdf

  # Write CSV instead of OFX
  extrato-ofx -bank nubank -format csv -output movimentos.csv extrato.pdf

  # Run the API server
  extrato-ofx -serve -addr :3000
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("extrato-ofx v%s\n", version)
		return
	}

	if *listFlag {
		fmt.Println("Supported banks:")
		for _, b := range extract.Banks() {
			fmt.Printf("  %-12s %s\n", b.ID, b.Name)
		}
		return
	}

	if *serveFlag {
		serve(*addrFlag)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *bankFlag == "" {
		fatalf("Error: -bank is required (see -list for supported ids)\n")
	}
	if *formatFlag != "ofx" && *formatFlag != "csv" {
		fatalf("Error: unknown format %q (use ofx or csv)\n", *formatFlag)
	}

	exitCode := 0
	for _, file := range files {
		if err := processFile(file, *bankFlag, *formatFlag, *outputFlag, len(files) > 1); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", file, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func serve(addr string) {
	// .env is optional; real environment variables win when both are set
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	if env := os.Getenv("PORT"); env != "" && addr == ":8080" {
		addr = ":" + env
	}

	app := fiber.New(fiber.Config{
		AppName:   "extrato-ofx v" + version,
		BodyLimit: 32 << 20,
	})
	api.RegisterRoutes(app)
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		app.Static("/", dir)
	}

	log.Printf("listening on %s", addr)
	log.Fatal(app.Listen(addr))
}

func processFile(path, bankID, format, output string, multi bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	ext, err := extract.New(bankID)
	if err != nil {
		return err
	}

	fmt.Printf("Processing: %s\n", path)

	pages, err := extractor.ExtractText(path)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	text := strings.Join(pages, "\n")

	if !ext.ValidateFormat(text) {
		return &extract.FormatMismatchError{Bank: ext.BankName()}
	}

	st, err := ext.Extract(text)
	if err == extract.ErrNoTransactions {
		fmt.Println("  Warning: no transactions found in the statement period")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Found %d transaction(s)\n", len(st.Transactions))

	// With multiple inputs, -output names a directory and each file gets the
	// default name inside it.
	outPath := output
	if outPath == "" || multi {
		base := ofx.FileName(bankID, time.Now())
		if format == "csv" {
			base = strings.TrimSuffix(base, ".ofx") + ".csv"
		}
		dir := filepath.Dir(path)
		if multi && output != "" {
			dir = output
		}
		outPath = filepath.Join(dir, base)
	}

	if format == "csv" {
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.WriteToFile(outPath, st); err != nil {
			return err
		}
	} else {
		doc, err := ofx.Serialize(st.Transactions, bankID, ext.Classify)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("  Wrote %s\n", outPath)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(2)
}
