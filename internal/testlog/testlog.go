// Copyright 2024 The go-memusage Authors
// This file is part of the go-memusage library.
//
// The go-memusage library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-memusage library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-memusage library. If not, see <http://www.gnu.org/licenses/>.

// Package testlog provides a log handler for unit tests.
package testlog

import (
	"sync"
	"testing"

	"github.com/ethereum/go-memusage/log"
)

// Handler returns a log handler which logs to the unit test log of t.
func Handler(t testing.TB, level log.Lvl) log.Handler {
	return log.LvlFilterHandler(level, &handler{t: t, fmt: log.TerminalFormat(false)})
}

type handler struct {
	t   testing.TB
	mu  sync.Mutex
	fmt log.Format
}

func (h *handler) Log(r *log.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.t.Logf("%s", h.fmt.Format(r))
	return nil
}

// Root routes the root logger into the unit test log of t until the test
// finishes. Packages that log through the root logger (the sizer cache, the
// code generator) become visible in verbose test output this way.
func Root(t testing.TB, level log.Lvl) {
	prev := log.Root().GetHandler()
	log.Root().SetHandler(Handler(t, level))
	t.Cleanup(func() { log.Root().SetHandler(prev) })
}

// Recorder is a log handler that keeps records in memory for inspection.
type Recorder struct {
	mu      sync.Mutex
	records []*log.Record
}

// Log implements log.Handler.
func (rec *Recorder) Log(r *log.Record) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.records = append(rec.records, r)
	return nil
}

// Messages returns the messages of all records logged so far.
func (rec *Recorder) Messages() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	msgs := make([]string, len(rec.records))
	for i, r := range rec.records {
		msgs[i] = r.Msg
	}
	return msgs
}

// Find returns the first record with the given message, or nil.
func (rec *Recorder) Find(msg string) *log.Record {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, r := range rec.records {
		if r.Msg == msg {
			return r
		}
	}
	return nil
}
