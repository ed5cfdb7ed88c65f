// Command tksim loads and executes a Tinker .tko image (§6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mokshshah/tinker/internal/image"
	"github.com/mokshshah/tinker/internal/tkconfig"
	"github.com/mokshshah/tinker/internal/tui"
	"github.com/mokshshah/tinker/internal/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		tuiMode     = flag.Bool("tui", false, "Open the terminal inspector instead of running headless")
		traceOn     = flag.Bool("trace", false, "Enable execution trace")
		configPath  = flag.String("config", "tinker.toml", "Path to an optional TOML config file")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tksim %s (%s)\n", Version, Commit)
		return
	}
	if *showHelp || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tksim <image.tko>")
		os.Exit(1)
	}

	cfg, err := tkconfig.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Simulation error")
		os.Exit(1)
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid tinker filepath")
		os.Exit(1)
	}

	img, err := image.Load(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Simulation error")
		os.Exit(1)
	}

	machine := vm.New(img)

	if *traceOn || cfg.Trace.Enabled {
		tf, err := os.Create(cfg.Trace.OutputFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Simulation error")
			os.Exit(1)
		}
		defer tf.Close()
		machine.Trace = vm.NewTracer(tf, cfg.Display.NumberFormat)
		defer machine.Trace.Flush()
	}

	if *tuiMode {
		if err := tui.Run(machine); err != nil {
			fmt.Fprintln(os.Stderr, "Simulation error")
			os.Exit(1)
		}
		return
	}

	if err := machine.Run(cfg.Execution.MaxCycles); err != nil {
		fmt.Fprintln(os.Stderr, "Simulation error")
		os.Exit(1)
	}
}
