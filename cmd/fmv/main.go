package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/fmv/pkg/analysis"
	"github.com/vanderheijden86/fmv/pkg/client"
	"github.com/vanderheijden86/fmv/pkg/config"
	"github.com/vanderheijden86/fmv/pkg/export"
	"github.com/vanderheijden86/fmv/pkg/model"
	"github.com/vanderheijden86/fmv/pkg/ui"
	"github.com/vanderheijden86/fmv/pkg/watcher"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	serverURL := flag.String("server", "", "Analysis service URL (overrides config)")
	modelFile := flag.String("model", "", "Feature model XML file to upload")
	timeoutSec := flag.Int("timeout", 0, "Request timeout in seconds (overrides config)")
	exportFile := flag.String("export-md", "", "Export the analyzed session to a Markdown file and exit")
	noWatch := flag.Bool("no-watch", false, "Disable re-upload on model file changes")
	robotHelp := flag.Bool("robot-help", false, "Show AI agent help")
	robotRules := flag.Bool("robot-rules", false, "Output generated logic rules as JSON and exit")
	robotMWPs := flag.Bool("robot-mwps", false, "Output minimum working products as JSON and exit")
	robotInsights := flag.Bool("robot-insights", false, "Output structural insights as JSON and exit")
	robotValidate := flag.Bool("robot-validate", false, "Validate the selection given as arguments, output JSON and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: fmv [options] [selection...]")
		fmt.Println("\nA TUI for configuring products from a feature model.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("fmv %s\n", Version)
		os.Exit(0)
	}
	if *robotHelp {
		printRobotHelp()
		os.Exit(0)
	}

	cfg, err := config.LoadFromCwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *timeoutSec > 0 {
		cfg.TimeoutSec = *timeoutSec
	}

	svc := client.New(cfg.ServerURL).WithTimeout(cfg.Timeout())

	robotMode := *robotRules || *robotMWPs || *robotInsights || *robotValidate
	if robotMode || *exportFile != "" {
		if *modelFile == "" {
			fmt.Fprintln(os.Stderr, "Error: --model is required for this mode")
			os.Exit(1)
		}
		session := mustUpload(svc, *modelFile, cfg.Timeout())

		switch {
		case *robotRules:
			printJSON(map[string]any{"logicRules": session.LogicRules})
		case *robotMWPs:
			printJSON(map[string]any{"mwps": session.MWPs})
		case *robotInsights:
			idx := model.NewIndex(session.Features)
			printJSON(analysis.Compute(idx, nil))
		case *robotValidate:
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
			defer cancel()
			result, err := svc.Validate(ctx, flag.Args())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printJSON(result)
		case *exportFile != "":
			if err := export.SaveMarkdownToFile(session, *exportFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Exported session to %s\n", *exportFile)
		}
		os.Exit(0)
	}

	// Interactive mode needs a real terminal; robot modes above work
	// through pipes.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: fmv requires a terminal (see --robot-help for scripted use)")
		os.Exit(1)
	}

	m := ui.NewModel(svc, *modelFile, cfg.Timeout(), ui.DefaultTheme())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	var mw *watcher.ModelWatcher
	if *modelFile != "" && !*noWatch && cfg.WatchEnabled() {
		mw, err = watcher.NewModelWatcher(*modelFile, watcher.NewDebouncer(cfg.Debounce()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
		} else {
			mw.Start(context.Background())
			go func() {
				for range mw.Changed() {
					p.Send(ui.ModelChangedMsg{})
				}
			}()
			defer mw.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running fmv: %v\n", err)
		os.Exit(1)
	}
}

// mustUpload uploads the model file or exits with a message.
func mustUpload(svc *client.Client, path string, timeout time.Duration) *model.Session {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	session, err := svc.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return session
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func printRobotHelp() {
	fmt.Println("fmv AI Agent Interface")
	fmt.Println("======================")
	fmt.Println("These commands upload the model given by --model and print JSON.")
	fmt.Println("")
	fmt.Println("  --robot-rules")
	fmt.Println("      Outputs the generated propositional logic rules.")
	fmt.Println("")
	fmt.Println("  --robot-mwps")
	fmt.Println("      Outputs the minimum working products: the smallest feature")
	fmt.Println("      sets that form a valid configuration.")
	fmt.Println("")
	fmt.Println("  --robot-insights")
	fmt.Println("      Outputs structural metrics over the feature tree:")
	fmt.Println("      - constraint_load: PageRank over the implication graph")
	fmt.Println("      - bottlenecks: betweenness centrality")
	fmt.Println("")
	fmt.Println("  --robot-validate <feature>...")
	fmt.Println("      Validates the named features as a selection.")
	fmt.Println("      Output: {\"isValid\": bool, \"messages\": [...]}")
	fmt.Println("")
	fmt.Println("  --export-md <file>")
	fmt.Println("      Writes a Markdown report with a Mermaid feature tree.")
}
