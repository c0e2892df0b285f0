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

package testlog

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-memusage/log"
)

type mockT struct {
	testing.TB
	out bytes.Buffer
}

func (t *mockT) Helper() {
	// noop for the purposes of unit tests
}

func (t *mockT) Logf(format string, args ...any) {
	// The timestamp is locale-dependent, so we want to trim that off
	// "INFO [01-01|00:00:00.000] a message ..." -> "a message..."
	line := fmt.Sprintf(format, args...)
	t.out.WriteString(strings.TrimSpace(strings.SplitN(line, "]", 2)[1]))
	t.out.WriteByte('\n')
}

func TestLogging(t *testing.T) {
	mt := new(mockT)
	l := log.New()
	l.SetHandler(Handler(mt, log.LvlInfo))
	subLogger := l.New("foobar", 123)

	l.Info("Visible")
	subLogger.Info("Hide and seek")
	l.Debug("Filtered")
	l.Warn("Also visible")

	lines := strings.Split(strings.TrimSpace(mt.out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("wrong number of lines: %q", lines)
	}
	if lines[0] != "Visible" {
		t.Errorf("line 0: have %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Hide and seek") || !strings.HasSuffix(lines[1], "foobar=123") {
		t.Errorf("line 1: have %q", lines[1])
	}
	if lines[2] != "Also visible" {
		t.Errorf("line 2: have %q", lines[2])
	}
}

func TestRoot(t *testing.T) {
	rec := new(Recorder)
	log.Root().SetHandler(rec)
	defer log.Root().SetHandler(log.DiscardHandler())

	t.Run("sub", func(t *testing.T) {
		Root(t, log.LvlTrace)
		log.Info("inside")
	})
	log.Info("outside")

	if msgs := rec.Messages(); len(msgs) != 1 || msgs[0] != "outside" {
		t.Fatalf("root handler not restored, recorded %q", msgs)
	}
}

func TestRecorder(t *testing.T) {
	rec := new(Recorder)
	l := log.New("component", "test")
	l.SetHandler(rec)

	l.Info("first", "n", 1)
	l.Trace("second")

	if msgs := rec.Messages(); len(msgs) != 2 || msgs[0] != "first" || msgs[1] != "second" {
		t.Fatalf("wrong messages: %q", msgs)
	}
	r := rec.Find("first")
	if r == nil {
		t.Fatal("record not found")
	}
	if r.Lvl != log.LvlInfo {
		t.Errorf("wrong level %v", r.Lvl)
	}
	if len(r.Ctx) != 4 || r.Ctx[0] != "component" || r.Ctx[3] != 1 {
		t.Errorf("wrong context %v", r.Ctx)
	}
	if rec.Find("missing") != nil {
		t.Error("found record that was never logged")
	}
}
