package parser

import (
	"testing"

	"github.com/evohub/ramses/internal/codec"
	"github.com/evohub/ramses/internal/frame"
)

func mustFrame(t *testing.T, line string) *frame.Frame {
	t.Helper()
	f, err := frame.ParsePacketLine(line)
	if err != nil {
		t.Fatalf("ParsePacketLine(%q): %v", line, err)
	}
	return f
}

func TestParseRelayDemand(t *testing.T) {
	f := mustFrame(t, "RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.IsArray() {
		t.Fatal("expected a single record")
	}
	demand, ok := result.Record["relay_demand"].(*float64)
	if !ok || demand == nil {
		t.Fatalf("relay_demand = %v", result.Record["relay_demand"])
	}
	if *demand != 1.0 {
		t.Errorf("relay_demand = %v, want 1.0", *demand)
	}
	// a "00" context byte is the whole-payload context, not zone 0
	for _, key := range indexKeys {
		if v, ok := result.Record[key]; ok {
			t.Errorf("index field %s = %v, want absent", key, v)
		}
	}
}

func TestParseRelayDemandDomain(t *testing.T) {
	f := mustFrame(t, " I --- 01:145038 --:------ 01:145038 0008 002 FC64")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Record["domain_id"] != "FC" {
		t.Errorf("domain_id = %v, want FC", result.Record["domain_id"])
	}
	if _, ok := result.Record["zone_idx"]; ok {
		t.Error("domain-indexed record must not also carry zone_idx")
	}
}

func TestHeatDemandArrayKeepsZoneZero(t *testing.T) {
	// zone 0 of a demand array is a real zone, unlike a "00" context byte
	f := mustFrame(t, " I --- 01:145038 --:------ 01:145038 3150 004 0018011A")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.IsArray() || len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", result)
	}
	if result.Records[0]["zone_idx"] != "00" {
		t.Errorf("zone_idx = %v, want 00", result.Records[0]["zone_idx"])
	}
	if result.Records[1]["zone_idx"] != "01" {
		t.Errorf("zone_idx = %v, want 01", result.Records[1]["zone_idx"])
	}
}

func TestDestinationException(t *testing.T) {
	// a relay probing the controller's actuator cycle is legal even though
	// the controller has no RP role for 3EF1
	f := mustFrame(t, "RQ --- 13:081807 01:145038 --:------ 3EF1 001 00")
	if _, err := Parse(f, 0); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestDestinationInverseVerb(t *testing.T) {
	// the controller may probe a relay because the relay answers RP/3EF1
	f := mustFrame(t, "RQ --- 01:145038 13:081807 --:------ 3EF1 001 00")
	if _, err := Parse(f, 0); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestDestinationRejected(t *testing.T) {
	// a DHW sensor cannot answer a temperature request
	f := mustFrame(t, "RQ --- 30:082155 07:045960 --:------ 30C9 001 00")
	_, err := Parse(f, 0)
	if !IsCorruptFrame(err) {
		t.Fatalf("err = %v, want corrupt frame", err)
	}
}

func TestUnknownSenderRejected(t *testing.T) {
	f := mustFrame(t, " I --- 07:045960 --:------ 07:045960 0008 002 00C8")
	_, err := Parse(f, 0)
	if !IsCorruptFrame(err) {
		t.Fatalf("err = %v, want corrupt frame", err)
	}
}

func TestArrayBroadcast(t *testing.T) {
	f := mustFrame(t, " I --- 01:145038 --:------ 01:145038 30C9 006 0007D0010866")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.IsArray() || len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", result)
	}

	want := []struct {
		zone string
		temp float64
	}{
		{"00", 20.0}, {"01", 21.5},
	}
	for i, w := range want {
		rec := result.Records[i]
		if rec["zone_idx"] != w.zone {
			t.Errorf("record %d: zone_idx = %v, want %s", i, rec["zone_idx"], w.zone)
		}
		temp, ok := rec["temperature"].(codec.Temperature)
		if !ok {
			t.Fatalf("record %d: temperature = %v", i, rec["temperature"])
		}
		if temp.State != codec.TempKnown || temp.Celsius != w.temp {
			t.Errorf("record %d: temperature = %v, want %v", i, temp, w.temp)
		}
	}
}

func TestSingleTemperatureNotArray(t *testing.T) {
	// a TRV broadcasts one zone's temperature in the same shape
	f := mustFrame(t, " I --- 04:056057 --:------ 04:056057 30C9 003 0105DC")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.IsArray() {
		t.Fatal("a device broadcast must not be split into sub-records")
	}
	if result.Record["zone_idx"] != "01" {
		t.Errorf("zone_idx = %v, want 01", result.Record["zone_idx"])
	}
}

func TestRQIndexOnly(t *testing.T) {
	f := mustFrame(t, "RQ --- 18:000730 01:145038 --:------ 30C9 001 05")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Record["zone_idx"] != "05" {
		t.Errorf("zone_idx = %v, want 05", result.Record["zone_idx"])
	}
}

func TestZoneIndexOutOfRange(t *testing.T) {
	f := mustFrame(t, "RQ --- 18:000730 01:145038 --:------ 30C9 001 0D")
	_, err := Parse(f, 12)
	if !IsCorruptPayload(err) {
		t.Fatalf("err = %v, want corrupt payload", err)
	}
}

func TestFaultLogNullEntry(t *testing.T) {
	f := mustFrame(t,
		"RP --- 01:145038 18:000730 --:------ 0418 022 "+nullFaultEntry)
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Record) != 0 {
		t.Fatalf("null log entry must decode to an empty record, got %v", result.Record)
	}
}

func TestFaultLogEntry(t *testing.T) {
	f := mustFrame(t,
		"RP --- 01:145038 18:000730 --:------ 0418 022 000000B00401010000008694A3CC7FFFFF70000ECC8A")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec := result.Record
	if rec["log_idx"] != "00" {
		t.Errorf("log_idx = %v, want 00", rec["log_idx"])
	}
	if rec["fault_state"] != "fault" {
		t.Errorf("fault_state = %v, want fault", rec["fault_state"])
	}
	if rec["fault_type"] != "battery_low" {
		t.Errorf("fault_type = %v, want battery_low", rec["fault_type"])
	}
	if rec["device_class"] != "sensor" {
		t.Errorf("device_class = %v, want sensor", rec["device_class"])
	}
	if rec["zone_idx"] != "01" {
		t.Errorf("zone_idx = %v, want 01", rec["zone_idx"])
	}
	if rec["device_id"] != "03:183434" {
		t.Errorf("device_id = %v, want 03:183434", rec["device_id"])
	}
	// bytes with unresolved meaning pass through untouched
	if rec["_unknown_1"] != "B0" {
		t.Errorf("_unknown_1 = %v, want B0", rec["_unknown_1"])
	}
	if rec["_unknown_2"] != "0000" {
		t.Errorf("_unknown_2 = %v, want 0000", rec["_unknown_2"])
	}
	if rec["_unknown_3"] != "FFFF7000" {
		t.Errorf("_unknown_3 = %v, want FFFF7000", rec["_unknown_3"])
	}
}

func TestFaultLogRQ(t *testing.T) {
	f := mustFrame(t, "RQ --- 18:000730 01:145038 --:------ 0418 003 000006")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Record["log_idx"] != "06" {
		t.Errorf("log_idx = %v, want 06", result.Record["log_idx"])
	}
}

func TestSetpointOffDistinctFromAbsent(t *testing.T) {
	off := mustFrame(t, " I --- 23:100224 --:------ 23:100224 2249 007 007EFF7EFFFFFF")
	result, err := Parse(off, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	now, ok := result.Record["setpoint_now"].(codec.Temperature)
	if !ok {
		t.Fatalf("setpoint_now = %v", result.Record["setpoint_now"])
	}
	if now.State != codec.TempOff {
		t.Errorf("setpoint_now state = %v, want off", now.State)
	}

	absent := mustFrame(t, " I --- 23:100224 --:------ 23:100224 2249 007 007FFF7FFFFFFF")
	result, err = Parse(absent, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	now = result.Record["setpoint_now"].(codec.Temperature)
	if now.State != codec.TempAbsent {
		t.Errorf("setpoint_now state = %v, want absent", now.State)
	}
}

func TestOpenThermPayload(t *testing.T) {
	f := mustFrame(t, "RP --- 10:048122 01:145038 --:------ 3220 005 00C0192F00")
	result, err := Parse(f, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec := result.Record
	if rec["msg_type"] != "Read-Ack" {
		t.Errorf("msg_type = %v, want Read-Ack", rec["msg_type"])
	}
	if rec["msg_id"] != 0x19 {
		t.Errorf("msg_id = %v, want 25", rec["msg_id"])
	}
	if rec["boiler_water_temp"] != 47.0 {
		t.Errorf("boiler_water_temp = %v, want 47.0", rec["boiler_water_temp"])
	}
}

func TestZoneModePayloads(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		mode    string
		wantErr bool
	}{
		{
			name: "permanent override",
			line: " W --- 18:000730 01:145038 --:------ 2349 007 0107D002FFFFFF",
			mode: "permanent_override",
		},
		{
			name: "follow schedule",
			line: " W --- 18:000730 01:145038 --:------ 2349 007 0107D000FFFFFF",
			mode: "follow_schedule",
		},
		{
			name:    "countdown without duration",
			line:    " W --- 18:000730 01:145038 --:------ 2349 007 0107D003FFFFFF",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFrame(t, tt.line)
			result, err := Parse(f, 0)
			if tt.wantErr {
				if !IsCorruptPayload(err) {
					t.Fatalf("err = %v, want corrupt payload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if result.Record["mode"] != tt.mode {
				t.Errorf("mode = %v, want %v", result.Record["mode"], tt.mode)
			}
		})
	}
}

func TestParsePayloadSwallowsFaults(t *testing.T) {
	f := mustFrame(t, "RP --- 13:163733 18:000730 --:------ 0008 002 00C9")
	if result := ParsePayload(f, 0); result != nil {
		t.Fatalf("expected nil for an out-of-range demand, got %+v", result)
	}

	f = mustFrame(t, "RP --- 13:163733 18:000730 --:------ 0008 002 00C8")
	if result := ParsePayload(f, 0); result == nil {
		t.Fatal("expected a result for a well-formed frame")
	}
}

func TestUnknownCode(t *testing.T) {
	f := mustFrame(t, " I --- 01:145038 --:------ 01:145038 4321 002 0000")
	_, err := Parse(f, 0)
	if !IsNotImplemented(err) {
		t.Fatalf("err = %v, want not implemented", err)
	}
}
