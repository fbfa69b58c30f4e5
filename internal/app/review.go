package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/cli"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/ipc"
	"github.com/rbright/marker/internal/output"
	"github.com/rbright/marker/internal/session"
	"golang.org/x/sync/errgroup"
)

// commandReview owns a review session: it holds the runtime socket, serves
// forwarded commands, watches the folder, and runs the stdin REPL.
func (r Runner) commandReview(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	dir, ok := r.resolveFolder(ctx, parsed, cfg)
	if !ok {
		return 1
	}
	if dir == "" {
		fmt.Fprintln(r.Stdout, "no folder selected")
		return 0
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v (see: marker status)\n", err)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	build := r.buildDeps
	if build == nil {
		build = defaultDeps
	}
	deps, err := build(cfg, r.Stderr, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	controller := session.NewController(logger, session.OptionsFromConfig(cfg), deps)
	snap, err := controller.Open(dir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	out := &lockedWriter{w: r.Stdout}
	fmt.Fprint(out, session.Render(snap))
	r.printWarnings(snap.Warnings)
	fmt.Fprintln(out, "type 'help' for commands")

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		return ipc.Serve(sessionCtx, listener, controller)
	})
	g.Go(func() error {
		err := catalog.Watch(sessionCtx, snap.Dir, cfg.Catalog.Extensions, logger, func(sub catalog.Submission) {
			fmt.Fprintf(out, "new submission: %s (type rescan to include it)\n", sub.Name)
		})
		if err != nil {
			logger.Warn("folder watch stopped", "error", err.Error())
		}
		return nil
	})

	r.repl(sessionCtx, controller, out)
	cancel()

	final := controller.Snapshot()
	logger.Info("review session finished",
		"session_id", controller.ID(),
		"dir", final.Dir,
		"state", final.State,
		"unsaved", final.Unsaved(),
	)

	if err := g.Wait(); err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		return 1
	}
	return 0
}

// resolveFolder returns the positional folder or asks the picker. An empty
// dir with ok=true means the reviewer cancelled.
func (r Runner) resolveFolder(ctx context.Context, parsed cli.Parsed, cfg config.Config) (string, bool) {
	if len(parsed.Args) == 1 {
		return parsed.Args[0], true
	}

	pick := r.pickFolder
	if pick == nil {
		pick = defaultPicker
	}
	dir, err := pick(ctx, cfg)
	if errors.Is(err, output.ErrPickerCancelled) {
		return "", true
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: choose folder: %v\n", err)
		return "", false
	}
	return dir, true
}

// repl reads one command per line until quit, EOF, or cancellation.
func (r Runner) repl(ctx context.Context, controller *session.Controller, out io.Writer) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.stdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	quitArmed := false
	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return
			}
			line = l
		}

		req, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		switch req.Command {
		case "":
			continue
		case "help", "?":
			fmt.Fprint(out, replHelp())
			continue
		case "quit", "exit", "q":
			if controller.Snapshot().Unsaved() && !quitArmed {
				quitArmed = true
				fmt.Fprintln(out, "unsaved changes; type quit again to discard them")
				continue
			}
			return
		}
		quitArmed = false

		resp := controller.Handle(ctx, req)
		for _, w := range resp.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if !resp.OK {
			fmt.Fprintf(out, "error: %s\n", resp.Error)
			continue
		}
		fmt.Fprint(out, resp.Message)
	}
}

// parseLine splits a REPL line into a request. Free-text commands keep the
// rest of the line verbatim so apostrophes need no quoting.
func parseLine(line string) (ipc.Request, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ipc.Request{}, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	switch name {
	case "comment", "prompt":
		if rest == "" {
			return ipc.Request{Command: name}, nil
		}
		return ipc.Request{Command: name, Args: []string{rest}}, nil
	}

	args, err := config.SplitArgs(rest)
	if err != nil {
		return ipc.Request{}, err
	}
	return ipc.Request{Command: name, Args: args}, nil
}

func replHelp() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, c := range session.Commands {
		fmt.Fprintf(&b, "  %-9s %s\n", c.Name, c.Usage)
	}
	fmt.Fprintf(&b, "  %-9s %s\n", "help", "show this list")
	fmt.Fprintf(&b, "  %-9s %s\n", "quit", "end the review session")
	return b.String()
}

// lockedWriter serializes REPL output with watcher notices.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
