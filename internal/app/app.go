package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/marker/internal/asr"
	"github.com/rbright/marker/internal/cli"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/feedback"
	"github.com/rbright/marker/internal/indicator"
	"github.com/rbright/marker/internal/ipc"
	"github.com/rbright/marker/internal/logging"
	"github.com/rbright/marker/internal/output"
	"github.com/rbright/marker/internal/pipeline"
	"github.com/rbright/marker/internal/record"
	"github.com/rbright/marker/internal/session"
	"github.com/rbright/marker/internal/version"
)

const binaryName = "marker"

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// buildDeps and pickFolder are replaced in tests.
	buildDeps  func(cfg config.Config, progress io.Writer, logger *slog.Logger) (session.Deps, error)
	pickFolder func(ctx context.Context, cfg config.Config) (string, error)
}

func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	r := Runner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Debug.LogLevel)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	warnings := append([]config.Warning{}, cfgLoaded.Warnings...)
	warnings = append(warnings, config.LoadEnvFiles(cfgLoaded.Config.EnvFiles)...)
	for _, w := range warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	if parsed.Command.Forwarded() {
		return r.forwardOrFail(ctx, parsed, cfgLoaded.Config)
	}

	switch parsed.Command {
	case cli.CommandReview:
		return r.commandReview(ctx, parsed, cfgLoaded.Config, logger)
	case cli.CommandScan:
		return r.commandScan(parsed, cfgLoaded.Config)
	case cli.CommandShow:
		return r.commandShow(parsed, cfgLoaded.Config)
	case cli.CommandExport:
		return r.commandExport(parsed, cfgLoaded.Config, logger)
	case cli.CommandDoctor:
		return r.commandDoctor(ctx, cfgLoaded)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// forwardOrFail sends a review command to the running session owner.
func (r Runner) forwardOrFail(ctx context.Context, parsed cli.Parsed, cfg config.Config) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		if parsed.Command == cli.CommandStatus {
			fmt.Fprintln(r.Stdout, "idle")
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	req := ipc.Request{Command: string(parsed.Command), Args: parsed.Args}
	resp, handled, err := tryForward(ctx, socketPath, req, forwardTimeout(parsed.Command, cfg))
	if !handled {
		if parsed.Command == cli.CommandStatus {
			fmt.Fprintln(r.Stdout, "idle")
			return 0
		}
		fmt.Fprintln(r.Stderr, "error: no active marker review session (start one with: marker review DIR)")
		return 1
	}
	r.printWarnings(resp.Warnings)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprint(r.Stdout, resp.Message)
	}
	return 0
}

// forwardTimeout bounds a forwarded request by the work the owner performs.
func forwardTimeout(cmd cli.Command, cfg config.Config) time.Duration {
	const slack = 5 * time.Second
	switch cmd {
	case cli.CommandRecord:
		return cfg.Audio.Duration() + cfg.Transcription.Timeout() + 2*slack
	case cli.CommandGenerate:
		return cfg.Feedback.Timeout() + slack
	case cli.CommandCopy, cli.CommandOpen, cli.CommandSave, cli.CommandNext, cli.CommandPrev, cli.CommandRescan:
		return slack
	default:
		return 2 * time.Second
	}
}

func (r Runner) printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w)
	}
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request, timeout time.Duration) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, timeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.IsNoOwner(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

// defaultDeps wires the production collaborators for a review session.
func defaultDeps(cfg config.Config, progress io.Writer, logger *slog.Logger) (session.Deps, error) {
	transcriber, err := asr.New(cfg.Transcription, logger)
	if err != nil {
		return session.Deps{}, err
	}
	generator, err := feedback.New(cfg.Feedback, logger)
	if err != nil {
		return session.Deps{}, err
	}
	return session.Deps{
		Recorder:  pipeline.NewRecorder(cfg, transcriber, logger),
		Generator: generator,
		Store:     record.FileStore{},
		Indicator: indicator.New(cfg.Indicator, progress, logger),
		Copier:    output.NewClipboard(cfg, logger),
		Opener:    output.NewViewer(cfg, logger),
	}, nil
}

func defaultPicker(ctx context.Context, cfg config.Config) (string, error) {
	return output.NewPicker(cfg).Pick(ctx)
}

func (r Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return os.Stdin
	}
	return r.Stdin
}
