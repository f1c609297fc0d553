package main

import (
	"os"

	"golang.org/x/term"
)

// key is a decoded keypress relevant to the game.
type key int

const (
	keyNone key = iota
	keyLeft
	keyRight
	keyRotate
	keySoftDrop
	keyHardDrop
	keyPause
	keyRestart
	keyQuit
)

// rawInput puts stdin into raw mode and decodes keypresses onto a channel.
// The returned restore function must run before the process prints its
// final output.
func rawInput() (<-chan key, func(), error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}
	restore := func() { term.Restore(fd, oldState) }

	keys := make(chan key, 16)
	go func() {
		defer close(keys)
		buf := make([]byte, 8)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			for _, k := range decodeKeys(buf[:n]) {
				keys <- k
			}
		}
	}()
	return keys, restore, nil
}

// decodeKeys maps raw bytes to keys, handling arrow escape sequences.
func decodeKeys(buf []byte) []key {
	var out []key
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == 0x1b && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				out = append(out, keyRotate)
			case 'B':
				out = append(out, keySoftDrop)
			case 'C':
				out = append(out, keyRight)
			case 'D':
				out = append(out, keyLeft)
			}
			i += 2
			continue
		}
		switch b {
		case 'a', 'A':
			out = append(out, keyLeft)
		case 'd', 'D':
			out = append(out, keyRight)
		case 'w', 'W':
			out = append(out, keyRotate)
		case 's', 'S':
			out = append(out, keySoftDrop)
		case ' ':
			out = append(out, keyHardDrop)
		case 'p', 'P':
			out = append(out, keyPause)
		case 'r', 'R':
			out = append(out, keyRestart)
		case 'q', 'Q', 0x03: // Ctrl+C
			out = append(out, keyQuit)
		}
	}
	return out
}
