package input

const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyLF        = '\n'
	keyCR        = '\r'
	keyEsc       = 0x1b
	keyDelete    = 0x7f

	// Windows console (msvcrt.getch) prefixes extended keys with 0x00 or 0xE0
	// followed by a scan code.
	winPrefixNull = 0x00
	winPrefixExt  = 0xe0
	winScanUp     = 0x48
	winScanDown   = 0x50
)

// Decode converts every byte of a drained input burst and returns the last
// recognized command. It never fails: unknown bytes and incomplete
// sequences decode to None.
func Decode(burst []byte) Command {
	last := None
	for i := 0; i < len(burst); {
		cmd, n := decodeOne(burst[i:])
		if cmd != None {
			last = cmd
		}
		i += n
	}
	return last
}

// decodeOne decodes the key at the start of b and reports how many bytes
// it consumed (always at least one).
func decodeOne(b []byte) (Command, int) {
	switch c := b[0]; c {
	case keyEsc:
		return decodeEscape(b)
	case winPrefixNull, winPrefixExt:
		if len(b) < 2 {
			return None, 1
		}
		switch b[1] {
		case winScanUp:
			return Up, 2
		case winScanDown:
			return Down, 2
		}
		return None, 2
	case keyCR, keyLF:
		// CRLF from a cooked or Windows terminal is a single Enter
		if c == keyCR && len(b) > 1 && b[1] == keyLF {
			return Enter, 2
		}
		return Enter, 1
	case keyBackspace, keyDelete:
		return Backspace, 1
	case keyCtrlC:
		return Quit, 1
	default:
		return decodeRune(c), 1
	}
}

// decodeEscape handles a lone ESC and the CSI/SS3 cursor sequences
// ESC [ A, ESC [ B, ESC O A, ESC O B. Other CSI sequences (function keys,
// mouse reports) are consumed whole and ignored.
func decodeEscape(b []byte) (Command, int) {
	if len(b) == 1 {
		return Escape, 1
	}

	switch b[1] {
	case 'O':
		if len(b) < 3 {
			return None, 2
		}
		return arrow(b[2]), 3
	case '[':
		// CSI: parameter/intermediate bytes 0x20-0x3F, final byte 0x40-0x7E
		i := 2
		for i < len(b) && b[i] >= 0x20 && b[i] <= 0x3f {
			i++
		}
		if i >= len(b) {
			return None, len(b)
		}
		if i == 2 {
			return arrow(b[i]), i + 1
		}
		return None, i + 1
	case keyEsc:
		// ESC ESC: the first is a standalone escape
		return Escape, 1
	default:
		// Alt+key arrives as ESC followed by the key; treat the ESC alone
		return Escape, 1
	}
}

func arrow(final byte) Command {
	switch final {
	case 'A':
		return Up
	case 'B':
		return Down
	}
	return None
}

func decodeRune(c byte) Command {
	switch c {
	case 'k', 'K':
		return Up
	case 'j', 'J':
		return Down
	case 'r', 'R':
		return Refresh
	case 'q', 'Q':
		return Quit
	case 'y', 'Y':
		return Copy
	}
	return None
}
