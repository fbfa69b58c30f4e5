package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/marker/internal/ipc"
)

// Commands lists the request names Handle understands, in help order.
var Commands = []struct {
	Name  string
	Usage string
}{
	{"status", "show the active submission"},
	{"record", "record one commentary take"},
	{"generate", "generate feedback from the transcript"},
	{"mark", "mark CODE TEXT TOTAL: set the three marks"},
	{"comment", "comment TEXT: replace the feedback text"},
	{"prompt", "prompt TEXT | prompt reset: override the prompt template"},
	{"save", "save marks and feedback"},
	{"next", "move to the next submission"},
	{"prev", "move to the previous submission"},
	{"copy", "copy feedback to the clipboard"},
	{"open", "open the submission in the viewer"},
	{"rescan", "rescan the folder"},
}

// Handle dispatches one IPC or REPL request.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	snap, err := c.dispatch(ctx, req)
	if err != nil {
		return ipc.Response{OK: false, State: string(snap.State), Error: err.Error(), Warnings: snap.Warnings}
	}
	return ipc.Response{OK: true, State: string(snap.State), Message: Render(snap), Warnings: snap.Warnings}
}

func (c *Controller) dispatch(ctx context.Context, req ipc.Request) (Snapshot, error) {
	args := req.Args
	switch strings.ToLower(strings.TrimSpace(req.Command)) {
	case "status":
		return c.Snapshot(), nil
	case "record":
		return c.Record(ctx)
	case "generate":
		return c.Generate(ctx)
	case "mark", "marks":
		if len(args) != 3 {
			return c.Snapshot(), fmt.Errorf("usage: mark CODE TEXT TOTAL")
		}
		return c.SetMarks(args[0], args[1], args[2])
	case "comment":
		return c.SetComment(strings.Join(args, " "))
	case "prompt":
		if len(args) == 1 && strings.EqualFold(args[0], "reset") {
			return c.ResetPrompt()
		}
		if len(args) == 0 {
			return c.Snapshot(), fmt.Errorf("usage: prompt TEXT | prompt reset")
		}
		return c.SetPrompt(strings.Join(args, " "))
	case "save":
		return c.Save()
	case "next":
		return c.Advance(1)
	case "prev", "previous":
		return c.Advance(-1)
	case "copy":
		return c.Copy(ctx)
	case "open":
		return c.OpenCurrent(ctx)
	case "rescan":
		return c.Rescan()
	default:
		return c.Snapshot(), fmt.Errorf("unknown command: %s", req.Command)
	}
}
