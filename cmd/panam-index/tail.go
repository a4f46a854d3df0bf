package main

import (
	"os"
	"strings"

	"github.com/alienxp03/panam-index/indexdata"
	"github.com/alienxp03/panam-index/internal/logline"
)

// readTail re-opens the indexed file and parses the last n lines
// recorded in store into log entries for the preview pane. It is
// called once, after indexing finishes, rather than on every
// progress tick: store's line positions are only final at that point.
func readTail(path string, store *indexdata.Store, tz string, n int) ([]logline.Entry, error) {
	nbLines := store.NbLines()
	if nbLines == 0 {
		return nil, nil
	}
	first := 0
	if nbLines > n {
		first = nbLines - n
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parser := logline.NewParser(tz)
	ring := logline.NewRingBuffer(n)
	for i := first; i < nbLines; i++ {
		start := int64(0)
		if i > 0 {
			start = store.PosForLine(i - 1)
		}
		end := store.PosForLine(i)
		if end <= start {
			continue
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, start); err != nil {
			return ring.All(), err
		}
		line := strings.TrimRight(string(buf), "\r\n")
		ring.Add(parser.Parse(line))
	}
	return ring.All(), nil
}
