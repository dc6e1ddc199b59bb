package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stowkv/stowkv/repl"
	"github.com/stowkv/stowkv/store"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive console session",
		RunE:  replRun,
	}

	storeName = "memory"
	dataDir   = "testdata"

	cmdArgs = []string{}
)

func init() {
	fs := replCmd.Flags()

	fs.StringVar(&storeName, "store", storeName,
		"storage backend: memory, bbolt, badger, or pebble")
	cfgVars["store"] = fs.Lookup("store")

	fs.StringVar(&dataDir, "data", dataDir, "`directory` containing stored data")
	cfgVars["data"] = fs.Lookup("data")

	fs.StringSliceVar(&cmdArgs, "cmd", cmdArgs,
		"console `command` to execute; multiple allowed")

	stowkvCmd.AddCommand(replCmd)
}

func openStore() (store.Store, error) {
	if storeName != "memory" {
		err := os.MkdirAll(dataDir, 0755)
		if err != nil {
			return nil, err
		}
	}

	switch storeName {
	case "memory":
		return store.NewMemStore(), nil
	case "bbolt":
		return store.OpenBBoltStore(dataDir)
	case "badger":
		return store.OpenBadgerStore(dataDir, log.StandardLogger())
	case "pebble":
		return store.OpenPebbleStore(dataDir, log.StandardLogger())
	}
	return nil, fmt.Errorf("got %s for store; want memory, bbolt, badger, or pebble",
		storeName)
}

func replRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("stowkv: %s", err)
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	ses := repl.NewSession(st, flgs)

	for _, arg := range cmdArgs {
		err = ses.Eval(os.Stdout, arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	for _, fn := range args {
		f, err := os.Open(fn)
		if err != nil {
			return fmt.Errorf("stowkv: command file: %s", err)
		}
		repl.Run(ses, f, os.Stdout)
		f.Close()
	}

	if len(args) == 0 && len(cmdArgs) == 0 {
		repl.Interact(ses, os.Stdout)
	}
	return nil
}
