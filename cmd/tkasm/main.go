// Command tkasm assembles Tinker source (.tk) into a .tko image (§6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mokshshah/tinker/internal/assembler"
	"github.com/mokshshah/tinker/internal/tkconfig"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		dumpSymbols = flag.Bool("symbols", false, "Print the final symbol table to stderr before exiting")
		configPath  = flag.String("config", "tinker.toml", "Path to an optional TOML config file")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tkasm %s (%s)\n", Version, Commit)
		return
	}
	if *showHelp || flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: tkasm <input.tk> <output.tko>")
		os.Exit(1)
	}

	cfg, err := tkconfig.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	src, err := os.Open(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open %s: %v\n", inputPath, err)
		os.Exit(1)
	}
	defer src.Close()

	result, err := assembler.Assemble(src, inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, result.Image, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write %s: %v\n", outputPath, err)
		os.Exit(1)
	}

	if *dumpSymbols {
		if err := assembler.WriteSymbols(os.Stderr, result.Symbols, cfg.Display.NumberFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot write symbol table: %v\n", err)
			os.Exit(1)
		}
	}
}
