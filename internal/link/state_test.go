// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"encoding/json"
	"testing"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

func TestValidateAddress(t *testing.T) {
	for _, addr := range []string{"ws://192.168.0.101:8080", " wss://board.local/paddle ", "WS://10.0.0.2"} {
		u, err := ValidateAddress(addr)
		if err != nil {
			t.Errorf("ValidateAddress(%q) = %v", addr, err)
			continue
		}
		if u.Hostname() == "" {
			t.Errorf("ValidateAddress(%q) lost the host", addr)
		}
	}
}

func TestStateSnapshotIsACopy(t *testing.T) {
	var st State
	st.begin(protocol.ClientSlaveSync, "ws://board:8080")
	st.setLastResponse("0x004")
	st.setPhase(Established)

	snap := st.Snapshot()
	if !snap.Connected || snap.Phase != Established || snap.ServerAddress != "ws://board:8080" {
		t.Fatalf("snapshot = %+v", snap)
	}
	*snap.LastResponse = "tampered"
	if got := *st.Snapshot().LastResponse; got != "0x004" {
		t.Fatalf("LastResponse changed through a snapshot: %q", got)
	}

	st.setPhase(Disconnected)
	if st.Snapshot().Connected {
		t.Fatalf("still connected after Disconnected")
	}
}

func TestSnapshotJSON(t *testing.T) {
	var st State
	st.begin(protocol.ClientMaster, "ws://board:8080")
	st.setPhase(MasterLoop)
	st.setLastPayload("12,7")

	data, err := json.Marshal(st.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Mode != protocol.ClientMaster || back.Phase != MasterLoop || back.LastPayload != "12,7" || !back.Connected {
		t.Fatalf("decoded %+v from %s", back, data)
	}
}
