package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandStatus  Command = "status"
	CommandSay     Command = "say"
	CommandSpeak   Command = "speak"
	CommandUndo    Command = "undo"
	CommandClear   Command = "clear"
	CommandDelete  Command = "delete"
	CommandChime   Command = "chime"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:   {},
	CommandStatus:  {},
	CommandSay:     {},
	CommandSpeak:   {},
	CommandUndo:    {},
	CommandClear:   {},
	CommandDelete:  {},
	CommandChime:   {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command  Command
	StateDir string
	Text     string
	ShowHelp bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--state-dir":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--state-dir requires a path")
			}
			parsed.StateDir = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			// say consumes the rest of the line as the text to speak.
			if cmd == CommandSay {
				if i == len(args)-1 {
					return Parsed{}, errors.New("say requires text to speak")
				}
				parsed.Text = strings.Join(args[i+1:], " ")
				return parsed, nil
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--state-dir PATH] <command>

Commands:
  serve     Run the board daemon
  status    Print daemon state and the current sentence
  say TEXT  Speak arbitrary text
  speak     Speak the current sentence
  undo      Undo the last sentence change
  delete    Delete the last sentence word
  clear     Clear the sentence
  chime     Play the attention chime
  doctor    Run state and environment checks
  version   Print version information
  help      Show this help

Flags:
  --state-dir PATH   State directory (default: $XDG_STATE_HOME/voxpad)
  -h, --help         Show help
  --version          Show version
`, binaryName)
}
