package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandReview   Command = "review"
	CommandRecord   Command = "record"
	CommandGenerate Command = "generate"
	CommandMark     Command = "mark"
	CommandComment  Command = "comment"
	CommandPrompt   Command = "prompt"
	CommandSave     Command = "save"
	CommandNext     Command = "next"
	CommandPrev     Command = "prev"
	CommandCopy     Command = "copy"
	CommandOpen     Command = "open"
	CommandRescan   Command = "rescan"
	CommandStatus   Command = "status"
	CommandScan     Command = "scan"
	CommandShow     Command = "show"
	CommandExport   Command = "export"
	CommandDevices  Command = "devices"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

// arity is the accepted positional argument range; max < 0 means unbounded.
type arity struct{ min, max int }

var validCommands = map[Command]arity{
	CommandReview:   {0, 1},
	CommandRecord:   {0, 0},
	CommandGenerate: {0, 0},
	CommandMark:     {3, 3},
	CommandComment:  {1, -1},
	CommandPrompt:   {1, -1},
	CommandSave:     {0, 0},
	CommandNext:     {0, 0},
	CommandPrev:     {0, 0},
	CommandCopy:     {0, 0},
	CommandOpen:     {0, 0},
	CommandRescan:   {0, 0},
	CommandStatus:   {0, 0},
	CommandScan:     {1, 1},
	CommandShow:     {1, 1},
	CommandExport:   {1, 1},
	CommandDevices:  {0, 0},
	CommandDoctor:   {0, 0},
	CommandVersion:  {0, 0},
	CommandHelp:     {0, 0},
}

// Forwarded reports whether a command is sent to the running review session.
func (c Command) Forwarded() bool {
	switch c {
	case CommandRecord, CommandGenerate, CommandMark, CommandComment, CommandPrompt,
		CommandSave, CommandNext, CommandPrev, CommandCopy, CommandOpen, CommandRescan, CommandStatus:
		return true
	}
	return false
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
	All        bool
	Output     string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	haveCommand := false
	literal := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !literal {
			switch arg {
			case "--":
				literal = true
				continue
			case "-h", "--help":
				parsed.ShowHelp = true
				parsed.Command = CommandHelp
				haveCommand = true
				continue
			case "--version":
				parsed.ShowHelp = false
				parsed.Command = CommandVersion
				haveCommand = true
				continue
			case "--config":
				i++
				if i >= len(args) {
					return Parsed{}, errors.New("--config requires a path")
				}
				parsed.ConfigPath = args[i]
				continue
			case "-o", "--output":
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires a path", arg)
				}
				parsed.Output = args[i]
				continue
			case "--all":
				parsed.All = true
				continue
			}
			if strings.HasPrefix(arg, "-") && len(arg) > 1 {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
		}

		if haveCommand {
			parsed.Args = append(parsed.Args, arg)
			continue
		}

		cmd := Command(strings.ToLower(arg))
		if cmd == "previous" {
			cmd = CommandPrev
		}
		if _, ok := validCommands[cmd]; !ok {
			return Parsed{}, fmt.Errorf("unknown command: %s", arg)
		}
		parsed.Command = cmd
		parsed.ShowHelp = cmd == CommandHelp
		haveCommand = true
	}

	if err := validate(parsed); err != nil {
		return Parsed{}, err
	}
	return parsed, nil
}

func validate(p Parsed) error {
	want := validCommands[p.Command]
	n := len(p.Args)
	if n < want.min || (want.max >= 0 && n > want.max) {
		return fmt.Errorf("%s: %s", p.Command, usage(p.Command))
	}
	if p.All && p.Command != CommandScan {
		return errors.New("--all is only valid with scan")
	}
	if p.Output != "" && p.Command != CommandExport {
		return errors.New("--output is only valid with export")
	}
	return nil
}

func usage(cmd Command) string {
	switch cmd {
	case CommandReview:
		return "usage: review [DIR]"
	case CommandMark:
		return "usage: mark CODE TEXT TOTAL"
	case CommandComment:
		return "usage: comment TEXT"
	case CommandPrompt:
		return "usage: prompt TEXT | prompt reset"
	case CommandScan:
		return "usage: scan DIR [--all]"
	case CommandShow:
		return "usage: show FILE"
	case CommandExport:
		return "usage: export DIR [--output PATH]"
	default:
		return "takes no arguments"
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Session:
  review [DIR]         Open a submissions folder and start a review session
                       (prompts with the folder picker when DIR is omitted)

Commands sent to the running review session:
  status               Show the active submission
  record               Record one commentary take
  generate             Generate feedback from the transcript
  mark CODE TEXT TOTAL Set the three marks
  comment TEXT         Replace the feedback text
  prompt TEXT|reset    Override or reset the prompt template
  save                 Save marks and feedback
  next, prev           Move between submissions
  copy                 Copy feedback to the clipboard
  open                 Open the submission in the viewer
  rescan               Rescan the folder

Standalone:
  scan DIR [--all]     List pending (or all) submissions
  show FILE            Preview a submission and its grading record
  export DIR [-o PATH] Write a DOCX report of graded submissions
  devices              List available input devices
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/marker/config.jsonc)
  --all           Include graded submissions (scan)
  -o, --output    Report path (export)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
