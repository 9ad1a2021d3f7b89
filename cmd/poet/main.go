package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jtomasevic/poet/pkg/monitor"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		property   = flag.String("property", "", "property file with the PCTL formula")
		traceFile  = flag.String("trace", "", "JSON trace file")
		reduce     = flag.Bool("reduce", false, "prune disabled states after each event")
		output     = flag.String("output", "", "output level: nothing|experiment|default|max_state|debug")
		dotFile    = flag.String("dot", "", "write the frontier graph as Graphviz DOT to this file")
	)
	flag.Parse()

	var cfg monitor.Config
	if *configPath != "" {
		loaded, err := monitor.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = loaded
	}

	// flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "property":
			cfg.PropertyFile = *property
		case "trace":
			cfg.TraceFile = *traceFile
		case "reduce":
			cfg.Reduce = *reduce
		case "output":
			cfg.OutputLevel = *output
		case "dot":
			cfg.DotFile = *dotFile
		}
	})

	m, err := monitor.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// any verdict, UNDETERMINED included, is a successful run
	fmt.Printf("[FINAL VERDICT]: %s\n", m.Verdict)
}
