package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

const (
	stowkvHistory = ".stowkv_history"
)

// Interact runs an interactive session on the terminal, with line editing
// and history persisted across sessions.
func Interact(ses *Session, w io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	if f, err := os.Open(stowkvHistory); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	for {
		s, err := line.Prompt("stowkv: ")
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "stowkv: %s\n", err)
			}
			break
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		line.AppendHistory(s)
		if exitCommand(s) {
			break
		}
		err = ses.Eval(w, s)
		if err != nil {
			fmt.Fprintln(w, err)
		}
	}

	if f, err := os.Create(stowkvHistory); err != nil {
		fmt.Fprintf(os.Stderr, "stowkv: error writing history file, %s: %s",
			stowkvHistory, err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
}
