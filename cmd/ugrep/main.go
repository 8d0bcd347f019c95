// Command ugrep is the demo binary wiring internal/config,
// internal/engine, internal/output and internal/query together: a
// thin main in the teacher's cmd/rdir style (manual os.Args switch, no
// flag-parsing library — spec.md §1 Non-goals exclude CLI option
// parsing from the core).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/polluks/ugrep/internal/applog"
	"github.com/polluks/ugrep/internal/config"
	"github.com/polluks/ugrep/internal/engine/fake"
	"github.com/polluks/ugrep/internal/output"
	"github.com/polluks/ugrep/internal/query"
	"github.com/polluks/ugrep/internal/termio"
	"github.com/polluks/ugrep/internal/walk"
)

func printHelp() {
	fmt.Print(`ugrep - interactive recursive grep

USAGE:
    ugrep [OPTIONS] PATTERN [PATH...]

OPTIONS:
    -h, --help          Show this help message and exit
    -Q, --query         Interactive query mode (re-searches on every keystroke)
    -l, --files-with-matches
                        Print only matching filenames
    -O, --ordered       Emit results in ascending slot (filename) order
    -w N                Truncate output lines to N columns
    -x N                Hex dump columns per row (default 16, max 64)
    --color=MODE        auto (default), on, or off
`)
}

func main() {
	cfg := config.DefaultConfig()
	var paths []string
	interactive := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printHelp()
			os.Exit(0)
		case arg == "-Q" || arg == "--query":
			interactive = true
		case arg == "-l" || arg == "--files-with-matches":
			cfg.FilesWithMatches = true
		case arg == "-O" || arg == "--ordered":
			cfg.Order = config.Ordered
		case arg == "-w":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					cfg.MaxLineWidth = n
				}
			}
		case arg == "-x":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					cfg.HexColumns = n
				}
			}
		case arg == "--color=on":
			cfg.Color = config.ColorOn
		case arg == "--color=off":
			cfg.Color = config.ColorOff
		case arg == "--color=auto":
			cfg.Color = config.ColorAuto
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "ugrep: unknown option %q\n", arg)
			os.Exit(2)
		default:
			if cfg.Pattern == "" {
				cfg.Pattern = arg
			} else {
				paths = append(paths, arg)
			}
		}
	}

	if cfg.Pattern == "" && !interactive {
		printHelp()
		os.Exit(2)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := walk.Files(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ugrep: %v\n", err)
		os.Exit(1)
	}
	if cfg.Order == config.Ordered {
		files = fake.SortedByName(files)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if interactive {
		runInteractive(ctx, cfg, files)
		return
	}
	runOnce(ctx, cfg, files)
}

// runOnce spawns one Worker per file through the Synchronizer and
// Sink pipeline of spec.md §4.3/§4.4, writing directly to stdout.
func runOnce(ctx context.Context, cfg config.Config, files []fake.File) {
	mode := output.Unordered
	if cfg.Order == config.Ordered {
		mode = output.Ordered
	}
	sync := output.NewSynchronizer(mode)
	sink := output.NewFileSink(os.Stdout)

	workers := make([]*output.Worker, len(files))
	for i, f := range files {
		f := f
		eng := &fake.Engine{Files: []fake.File{f}}
		workers[i] = output.NewWorker(sync, sink, cfg.MaxLineWidth, cfg.NormalizedHexColumns(),
			func(ctx context.Context, w *output.Writer) error {
				w.SetBinary(output.DetectBinary([]byte(f.Content)))
				return eng.RunSearch(ctx, cfg, w)
			})
	}

	errs := output.RunWorkers(ctx, workers)
	for _, err := range errs {
		if err != nil && err != context.Canceled {
			applog.Report(applog.SinkClosed, "worker search failed", err)
		}
	}
}

// runInteractive wires QueryController and termio.Screen around the
// fake engine loaded from files, the interactive query core of
// spec.md §4.5-§4.7.
func runInteractive(ctx context.Context, cfg config.Config, files []fake.File) {
	eng := &fake.Engine{Files: files}
	qc := query.NewQueryController(eng, cfg)

	scr, err := termio.NewScreen(qc, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ugrep: %v\n", err)
		os.Exit(1)
	}
	defer scr.Fini()

	if err := scr.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "ugrep: %v\n", err)
		os.Exit(1)
	}
}
