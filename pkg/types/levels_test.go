package types

import (
	"encoding/json"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{name: "none", want: LevelNone},
		{name: "trace", want: LevelTrace},
		{name: "info", want: LevelInfo},
		{name: "warn", want: LevelWarn},
		{name: "error", want: LevelError},
		{name: "panic", want: LevelPanic},
		{name: "all", want: LevelAll},
		{name: "WARN", wantErr: true}, // Names are case-sensitive
		{name: "debug", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) succeeded, want error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	// Lower ordinal means looser filtering; thresholds compare with >=.
	if !(LevelAll <= LevelTrace && LevelTrace < LevelInfo && LevelInfo < LevelWarn &&
		LevelWarn < LevelError && LevelError < LevelPanic && LevelPanic < LevelNone) {
		t.Fatal("level ordinals are not ordered all <= trace < info < warn < error < panic < none")
	}
	if LevelError < LevelWarn {
		t.Error("an error record must pass a warn threshold")
	}
}

func TestLevelJSONRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelNone, LevelTrace, LevelInfo, LevelWarn, LevelError, LevelPanic} {
		data, err := json.Marshal(level)
		if err != nil {
			t.Fatalf("marshal %v: %v", level, err)
		}
		var got Level
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != level {
			t.Errorf("round trip of %v yielded %v", level, got)
		}
	}
}

func TestLevelUnmarshalRejectsUnknown(t *testing.T) {
	var l Level
	if err := json.Unmarshal([]byte(`"verbose"`), &l); err == nil {
		t.Error("unmarshal of unknown level name succeeded")
	}
	if err := json.Unmarshal([]byte(`42`), &l); err == nil {
		t.Error("unmarshal of numeric level succeeded")
	}
}
