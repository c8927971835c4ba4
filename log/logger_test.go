package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestJSONOutputCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LvlDebug, true)
	defer Setup(&bytes.Buffer{}, LvlInfo, true)

	l := New("component", "worker")
	l.Info("Serviced request", "request", "0x01", "err", errors.New("boom"))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["message"] != "Serviced request" {
		t.Fatalf("unexpected message: %v", rec["message"])
	}
	if rec["component"] != "worker" || rec["request"] != "0x01" || rec["err"] != "boom" {
		t.Fatalf("missing context in %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LvlWarn, true)
	defer Setup(&bytes.Buffer{}, LvlInfo, true)

	Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info line written at warn level: %q", buf.String())
	}
	Warn("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn line not written")
	}
}

func TestLvlFromString(t *testing.T) {
	for in, want := range map[string]Lvl{"trace": LvlTrace, "DEBUG": LvlDebug, "eror": LvlError, "crit": LvlCrit} {
		got, err := LvlFromString(in)
		if err != nil || got != want {
			t.Errorf("LvlFromString(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := LvlFromString("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}
