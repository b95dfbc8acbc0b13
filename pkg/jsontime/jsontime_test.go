package jsontime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMilli_JSONRoundTrip(t *testing.T) {
	orig := Milli(time.Date(2025, 6, 15, 10, 30, 45, 123000000, time.UTC))

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	want := time.Time(orig).UnixMilli()
	var raw int64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal to int64 error: %v", err)
	}
	if raw != want {
		t.Errorf("marshaled value = %d; want %d", raw, want)
	}

	var restored Milli
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !restored.Equal(orig) {
		t.Errorf("roundtrip: got %v, want %v", restored, orig)
	}
}

func TestMilli_UnmarshalInvalid(t *testing.T) {
	var m Milli
	if err := json.Unmarshal([]byte(`"not a number"`), &m); err == nil {
		t.Error("expected error for string input")
	}
}

func TestMilli_Compare(t *testing.T) {
	t1 := Milli(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	t2 := t1.Add(time.Second)

	if !t1.Before(t2) {
		t.Error("t1 should be before t2")
	}
	if !t2.After(t1) {
		t.Error("t2 should be after t1")
	}
	if got := t2.Sub(t1); got != time.Second {
		t.Errorf("Sub = %v; want 1s", got)
	}
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{`"2s"`, 2 * time.Second},
		{`"500ms"`, 500 * time.Millisecond},
		{`1500`, 1500 * time.Millisecond},
	}

	for _, tc := range tests {
		var d Duration
		if err := json.Unmarshal([]byte(tc.input), &d); err != nil {
			t.Errorf("Unmarshal %s error: %v", tc.input, err)
			continue
		}
		if d.Duration() != tc.want {
			t.Errorf("Unmarshal %s = %v; want %v", tc.input, d.Duration(), tc.want)
		}
	}
}

func TestDuration_JSONInvalid(t *testing.T) {
	for _, input := range []string{`"bogus"`, `true`, `{}`} {
		var d Duration
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("Unmarshal %s: expected error", input)
		}
	}
}

func TestDuration_MarshalString(t *testing.T) {
	data, err := json.Marshal(Duration(2 * time.Second))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"2s"` {
		t.Errorf("Marshal = %s; want \"2s\"", data)
	}
}
