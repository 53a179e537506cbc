// Package input turns terminal input into abstract dashboard commands.
//
// Two front doors share one resolution rule. Decode works on raw bytes read
// from a terminal in raw mode (arrow escape sequences, Windows console scan
// codes, control bytes). KeyMap works on already-decoded bubbletea key
// messages. In both cases a burst of input collapses to a single Command:
// the last recognized one wins, so a backlog of stale navigation never
// accumulates.
package input

// Command is an abstract user intent
type Command int

const (
	None Command = iota
	Up
	Down
	Enter
	Escape
	Backspace
	Refresh
	Quit
	Copy
)

var commandNames = map[Command]string{
	None:      "none",
	Up:        "up",
	Down:      "down",
	Enter:     "enter",
	Escape:    "escape",
	Backspace: "backspace",
	Refresh:   "refresh",
	Quit:      "quit",
	Copy:      "copy",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Latest returns the last non-None command of a burst, or None
func Latest(cmds []Command) Command {
	for i := len(cmds) - 1; i >= 0; i-- {
		if cmds[i] != None {
			return cmds[i]
		}
	}
	return None
}
