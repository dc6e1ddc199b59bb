// Package repl implements the interactive console: line-oriented commands
// that operate named collections against a single store.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/stowkv/stowkv/codec"
	"github.com/stowkv/stowkv/coll"
	"github.com/stowkv/stowkv/flags"
	"github.com/stowkv/stowkv/store"
)

// A Session evaluates console commands against one store. Collections are
// addressed as <kind> <name>; each kind has its own root namespace and each
// name is a child namespace under it, so names never collide across kinds.
type Session struct {
	st   store.Store
	cdc  codec.Codec
	flgs flags.Flags
}

func NewSession(st store.Store, flgs flags.Flags) *Session {
	var cdc codec.Codec = codec.Binary{}
	if !flgs.GetFlag(flags.BinaryCodec) {
		cdc = codec.JSON{}
	}
	return &Session{
		st:   st,
		cdc:  cdc,
		flgs: flgs,
	}
}

func (ses *Session) item(nam string) *coll.Item[string] {
	return coll.NewItem[string]([]byte("item"),
		coll.WithCodec(ses.cdc)).AddSuffix([]byte(nam))
}

func (ses *Session) list(nam string) *coll.List[string] {
	return coll.NewList[string]([]byte("list"),
		coll.WithCodec(ses.cdc)).AddSuffix([]byte(nam))
}

func (ses *Session) deque(nam string) *coll.Deque[string] {
	return coll.NewDeque[string]([]byte("deque"),
		coll.WithCodec(ses.cdc)).AddSuffix([]byte(nam))
}

func (ses *Session) keymap(nam string) *coll.Keymap[string, string] {
	opts := []coll.Option{coll.WithCodec(ses.cdc)}
	if !ses.flgs.GetFlag(flags.MapIteration) {
		opts = append(opts, coll.WithoutIteration())
	}
	return coll.NewKeymap[string, string]([]byte("map"),
		opts...).AddSuffix([]byte(nam))
}

func (ses *Session) keyset(nam string) *coll.Keyset[string] {
	opts := []coll.Option{coll.WithCodec(ses.cdc)}
	if !ses.flgs.GetFlag(flags.MapIteration) {
		opts = append(opts, coll.WithoutIteration())
	}
	return coll.NewKeyset[string]([]byte("set"),
		opts...).AddSuffix([]byte(nam))
}

func (ses *Session) slots(nam string) *coll.SlotMap[string] {
	return coll.NewSlotMap[string]([]byte("slots"),
		coll.WithCodec(ses.cdc)).AddSuffix([]byte(nam))
}

func (ses *Session) heap(nam string) *coll.Heap[string] {
	return coll.NewHeap[string]([]byte("heap"),
		coll.WithCodec(ses.cdc)).AddSuffix([]byte(nam))
}

const helpText = `commands:
  item set <name> <value> | get <name> | del <name>
  list push <name> <value>... | pop <name> | len <name> | clear <name> |
       show <name>
  deque pushf <name> <value>... | pushb <name> <value>... | popf <name> |
        popb <name> | len <name> | show <name>
  map set <name> <key> <value> | get <name> <key> | has <name> <key> |
      del <name> <key> | len <name> | show <name>
  set add <name> <key>... | has <name> <key> | del <name> <key> |
      len <name> | show <name>
  slots add <name> <value> | get <name> <slot> <gen> |
        del <name> <slot> <gen> | len <name> | show <name>
  heap push <name> <value>... | pop <name> | max <name> | len <name> |
       clear <name>
  flags
  help
  exit | quit
`

func usageErr(usage string) error {
	return fmt.Errorf("repl: usage: %s", usage)
}

// Eval evaluates a single command line, writing any results to w.
func (ses *Session) Eval(w io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "help":
		fmt.Fprint(w, helpText)
		return nil
	case "flags":
		if len(fields) != 1 {
			return usageErr("flags")
		}
		ses.showFlags(w)
		return nil
	case "item":
		return ses.evalItem(w, fields[1:])
	case "list":
		return ses.evalList(w, fields[1:])
	case "deque":
		return ses.evalDeque(w, fields[1:])
	case "map":
		return ses.evalKeymap(w, fields[1:])
	case "set":
		return ses.evalKeyset(w, fields[1:])
	case "slots":
		return ses.evalSlots(w, fields[1:])
	case "heap":
		return ses.evalHeap(w, fields[1:])
	}
	return fmt.Errorf("repl: unknown command: %s", fields[0])
}

func (ses *Session) evalItem(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("item set|get|del <name> ...")
	}
	it := ses.item(args[1])

	switch args[0] {
	case "set":
		if len(args) != 3 {
			return usageErr("item set <name> <value>")
		}
		return it.Save(ses.st, args[2])
	case "get":
		if len(args) != 2 {
			return usageErr("item get <name>")
		}
		s, err := it.Load(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "del":
		if len(args) != 2 {
			return usageErr("item del <name>")
		}
		return it.Remove(ses.st)
	}
	return usageErr("item set|get|del <name> ...")
}

func (ses *Session) evalList(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("list push|pop|len|clear|show <name> ...")
	}
	l := ses.list(args[1])

	switch args[0] {
	case "push":
		if len(args) < 3 {
			return usageErr("list push <name> <value>...")
		}
		for _, val := range args[2:] {
			_, err := l.Push(ses.st, val)
			if err != nil {
				return err
			}
		}
		return nil
	case "pop":
		s, err := l.Pop(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "len":
		n, err := l.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "clear":
		return l.Clear(ses.st)
	case "show":
		it, err := l.Iter(ses.st)
		if err != nil {
			return err
		}
		return showPositioned(w,
			func() (string, bool, error) {
				return it.Next()
			})
	}
	return usageErr("list push|pop|len|clear|show <name> ...")
}

func (ses *Session) evalDeque(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("deque pushf|pushb|popf|popb|len|show <name> ...")
	}
	d := ses.deque(args[1])

	switch args[0] {
	case "pushf", "pushb":
		if len(args) < 3 {
			return usageErr("deque pushf|pushb <name> <value>...")
		}
		for _, val := range args[2:] {
			var err error
			if args[0] == "pushf" {
				err = d.PushFront(ses.st, val)
			} else {
				err = d.PushBack(ses.st, val)
			}
			if err != nil {
				return err
			}
		}
		return nil
	case "popf", "popb":
		var s string
		var err error
		if args[0] == "popf" {
			s, err = d.PopFront(ses.st)
		} else {
			s, err = d.PopBack(ses.st)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "len":
		n, err := d.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "show":
		it, err := d.Iter(ses.st)
		if err != nil {
			return err
		}
		return showPositioned(w,
			func() (string, bool, error) {
				return it.Next()
			})
	}
	return usageErr("deque pushf|pushb|popf|popb|len|show <name> ...")
}

func (ses *Session) evalKeymap(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("map set|get|has|del|len|show <name> ...")
	}
	km := ses.keymap(args[1])

	switch args[0] {
	case "set":
		if len(args) != 4 {
			return usageErr("map set <name> <key> <value>")
		}
		return km.Insert(ses.st, args[2], args[3])
	case "get":
		if len(args) != 3 {
			return usageErr("map get <name> <key>")
		}
		s, ok, err := km.Get(ses.st, args[2])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("repl: map %s: key %s not found", args[1], args[2])
		}
		fmt.Fprintln(w, s)
		return nil
	case "has":
		if len(args) != 3 {
			return usageErr("map has <name> <key>")
		}
		has, err := km.Contains(ses.st, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, has)
		return nil
	case "del":
		if len(args) != 3 {
			return usageErr("map del <name> <key>")
		}
		return km.Remove(ses.st, args[2])
	case "len":
		n, err := km.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "show":
		it, err := km.Iter(ses.st)
		if err != nil {
			return err
		}
		tbl := newTable(w, []string{"key", "value"})
		for {
			k, v, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			tbl.Append([]string{k, v})
		}
		tbl.Render()
		return nil
	}
	return usageErr("map set|get|has|del|len|show <name> ...")
}

func (ses *Session) evalKeyset(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("set add|has|del|len|show <name> ...")
	}
	ks := ses.keyset(args[1])

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return usageErr("set add <name> <key>...")
		}
		for _, key := range args[2:] {
			_, err := ks.Insert(ses.st, key)
			if err != nil {
				return err
			}
		}
		return nil
	case "has":
		if len(args) != 3 {
			return usageErr("set has <name> <key>")
		}
		has, err := ks.Contains(ses.st, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, has)
		return nil
	case "del":
		if len(args) != 3 {
			return usageErr("set del <name> <key>")
		}
		return ks.Remove(ses.st, args[2])
	case "len":
		n, err := ks.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "show":
		it, err := ks.Iter(ses.st)
		if err != nil {
			return err
		}
		tbl := newTable(w, []string{"key"})
		for {
			k, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			tbl.Append([]string{k})
		}
		tbl.Render()
		return nil
	}
	return usageErr("set add|has|del|len|show <name> ...")
}

func parseIndex(slot, gen string) (coll.Index, error) {
	s, err := strconv.ParseUint(slot, 10, 32)
	if err != nil {
		return coll.Index{}, fmt.Errorf("repl: bad slot %s: %s", slot, err)
	}
	g, err := strconv.ParseUint(gen, 10, 64)
	if err != nil {
		return coll.Index{}, fmt.Errorf("repl: bad generation %s: %s", gen, err)
	}
	return coll.Index{Slot: uint32(s), Generation: g}, nil
}

func (ses *Session) evalSlots(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("slots add|get|del|len|show <name> ...")
	}
	sm := ses.slots(args[1])

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return usageErr("slots add <name> <value>")
		}
		idx, err := sm.Insert(ses.st, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "slot %d gen %d\n", idx.Slot, idx.Generation)
		return nil
	case "get":
		if len(args) != 4 {
			return usageErr("slots get <name> <slot> <gen>")
		}
		idx, err := parseIndex(args[2], args[3])
		if err != nil {
			return err
		}
		s, ok, err := sm.Get(ses.st, idx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("repl: slots %s: no entry at slot %d gen %d",
				args[1], idx.Slot, idx.Generation)
		}
		fmt.Fprintln(w, s)
		return nil
	case "del":
		if len(args) != 4 {
			return usageErr("slots del <name> <slot> <gen>")
		}
		idx, err := parseIndex(args[2], args[3])
		if err != nil {
			return err
		}
		s, err := sm.Remove(ses.st, idx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "len":
		n, err := sm.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "show":
		it, err := sm.Iter(ses.st)
		if err != nil {
			return err
		}
		tbl := newTable(w, []string{"slot", "gen", "value"})
		for {
			idx, v, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			tbl.Append([]string{
				strconv.FormatUint(uint64(idx.Slot), 10),
				strconv.FormatUint(idx.Generation, 10),
				v,
			})
		}
		tbl.Render()
		return nil
	}
	return usageErr("slots add|get|del|len|show <name> ...")
}

func (ses *Session) evalHeap(w io.Writer, args []string) error {
	if len(args) < 2 {
		return usageErr("heap push|pop|max|len|clear <name> ...")
	}
	h := ses.heap(args[1])

	switch args[0] {
	case "push":
		if len(args) < 3 {
			return usageErr("heap push <name> <value>...")
		}
		for _, val := range args[2:] {
			err := h.Insert(ses.st, val)
			if err != nil {
				return err
			}
		}
		return nil
	case "pop":
		s, err := h.Remove(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "max":
		s, err := h.GetMax(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case "len":
		n, err := h.Len(ses.st)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	case "clear":
		return h.Clear(ses.st)
	}
	return usageErr("heap push|pop|max|len|clear <name> ...")
}

// showFlags lists the session's feature flags and their values.
func (ses *Session) showFlags(w io.Writer) {
	var nams []string
	flags.ListFlags(func(nam string, f flags.Flag) {
		nams = append(nams, nam)
	})
	sort.Strings(nams)

	tbl := newTable(w, []string{"flag", "value"})
	for _, nam := range nams {
		f, _ := flags.LookupFlag(nam)
		tbl.Append([]string{nam, strconv.FormatBool(ses.flgs.GetFlag(f))})
	}
	tbl.Render()
}

func newTable(w io.Writer, hdr []string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(hdr)
	return tbl
}

func showPositioned(w io.Writer, next func() (string, bool, error)) error {
	tbl := newTable(w, []string{"pos", "value"})
	for pos := 0; ; pos++ {
		v, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tbl.Append([]string{strconv.Itoa(pos), v})
	}
	tbl.Render()
	return nil
}

// exitCommand reports whether a line asks to end the session.
func exitCommand(line string) bool {
	fields := strings.Fields(line)
	return len(fields) == 1 && (fields[0] == "exit" || fields[0] == "quit")
}

// Run evaluates commands from r line by line until EOF or an exit command.
// Command failures are reported to w and do not stop the session.
func Run(ses *Session, r io.Reader, w io.Writer) {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := scan.Text()
		if exitCommand(line) {
			break
		}
		err := ses.Eval(w, line)
		if err != nil {
			fmt.Fprintln(w, err)
		}
	}
}
