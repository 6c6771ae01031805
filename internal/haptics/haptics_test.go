// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package haptics

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Logger: log.New(&buf, "", 0)}
	if err := s.Trigger(3); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "level 3") {
		t.Fatalf("log output %q", buf.String())
	}
	if err := s.Trigger(7); err == nil {
		t.Fatalf("level 7 should be rejected")
	}
}

func TestSinkFunc(t *testing.T) {
	var got []protocol.Level
	var s Sink = SinkFunc(func(l protocol.Level) error {
		got = append(got, l)
		return nil
	})
	_ = s.Trigger(1)
	_ = s.Trigger(4)
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Fatalf("got %v", got)
	}
	if err := Discard.Trigger(2); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := EncodeEvent(2, ts)
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Level != 2 || ev.Time != "2026-03-01T12:00:00Z" {
		t.Fatalf("event = %+v", ev)
	}
	if _, err := EncodeEvent(-1, ts); err == nil {
		t.Fatalf("negative level should be rejected")
	}
}
