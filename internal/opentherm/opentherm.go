// Package opentherm decodes the 4-byte OpenTherm frame embedded in 3220
// payloads: a type/parity byte, a data-id and a 16-bit data value whose
// interpretation depends on the data-id.
package opentherm

import (
	"fmt"
	"strconv"
)

// Message types, from bits 4..6 of the first frame byte.
const (
	MsgReadData      = "Read-Data"
	MsgWriteData     = "Write-Data"
	MsgInvalidData   = "Invalid-Data"
	MsgReadAck       = "Read-Ack"
	MsgWriteAck      = "Write-Ack"
	MsgDataInvalid   = "Data-Invalid"
	MsgUnknownDataID = "Unknown-DataId"
)

var msgTypes = [8]string{
	MsgReadData,
	MsgWriteData,
	MsgInvalidData,
	"-reserved-",
	MsgReadAck,
	MsgWriteAck,
	MsgDataInvalid,
	MsgUnknownDataID,
}

// Frame is one decoded OpenTherm exchange.
type Frame struct {
	MsgType string
	MsgID   int
	Name    string
	Desc    string
	Values  map[string]any
}

// Parity returns the even-parity bit of an integer, used to build the
// type/parity byte of a request frame.
func Parity(x int) int {
	bit := 0
	for ; x != 0; x >>= 1 {
		bit ^= x & 1
	}
	return bit
}

type valueKind int

const (
	kindFlag8 valueKind = iota // two flag bytes
	kindU8                     // two independent unsigned bytes
	kindF88                    // signed fixed point, 1/256 resolution
	kindU16
	kindS16
)

type schema struct {
	name string
	desc string
	kind valueKind
	hb   string // names for the split-byte kinds
	lb   string
}

var messages = map[int]schema{
	0x00: {name: "status", desc: "Status", kind: kindFlag8, hb: "status_master", lb: "status_slave"},
	0x01: {name: "control_setpoint", desc: "Control setpoint", kind: kindF88},
	0x02: {name: "master_config", desc: "Master configuration", kind: kindU8, hb: "master_config_flags", lb: "master_memberid_code"},
	0x03: {name: "slave_config", desc: "Slave configuration", kind: kindU8, hb: "slave_config_flags", lb: "slave_memberid_code"},
	0x05: {name: "fault_flags", desc: "Application-specific flags", kind: kindU8, hb: "fault_flags", lb: "oem_fault_code"},
	0x06: {name: "remote_flags", desc: "Remote parameter flags", kind: kindFlag8, hb: "transfer_flags", lb: "rw_flags"},
	0x0E: {name: "max_rel_modulation", desc: "Maximum relative modulation level", kind: kindF88},
	0x10: {name: "room_setpoint", desc: "Current room setpoint", kind: kindF88},
	0x11: {name: "rel_modulation_level", desc: "Relative modulation level", kind: kindF88},
	0x12: {name: "ch_water_pressure", desc: "Central heating water pressure", kind: kindF88},
	0x13: {name: "dhw_flow_rate", desc: "Domestic hot water flow rate", kind: kindF88},
	0x18: {name: "room_temp", desc: "Current room temperature", kind: kindF88},
	0x19: {name: "boiler_water_temp", desc: "Boiler water temperature", kind: kindF88},
	0x1A: {name: "dhw_temp", desc: "Domestic hot water temperature", kind: kindF88},
	0x1B: {name: "outside_temp", desc: "Outside temperature", kind: kindF88},
	0x1C: {name: "return_water_temp", desc: "Return water temperature", kind: kindF88},
	0x38: {name: "dhw_setpoint", desc: "Domestic hot water setpoint", kind: kindF88},
	0x39: {name: "max_ch_setpoint", desc: "Maximum central heating setpoint", kind: kindF88},
	0x73: {name: "oem_diagnostic_code", desc: "OEM diagnostic code", kind: kindU16},
	0x74: {name: "burner_starts", desc: "Number of burner starts", kind: kindU16},
	0x75: {name: "ch_pump_starts", desc: "Number of CH pump starts", kind: kindU16},
	0x76: {name: "dhw_pump_starts", desc: "Number of DHW pump/valve starts", kind: kindU16},
	0x77: {name: "dhw_burner_starts", desc: "Number of burner starts in DHW mode", kind: kindU16},
	0x78: {name: "burner_hours", desc: "Burner operation hours", kind: kindU16},
	0x79: {name: "ch_pump_hours", desc: "CH pump operation hours", kind: kindU16},
	0x7A: {name: "dhw_pump_hours", desc: "DHW pump/valve operation hours", kind: kindU16},
	0x7B: {name: "dhw_burner_hours", desc: "Burner hours in DHW mode", kind: kindU16},
	0x7D: {name: "opentherm_version", desc: "Slave OpenTherm protocol version", kind: kindF88},
	0x7F: {name: "slave_version", desc: "Slave product version", kind: kindU8, hb: "product_type", lb: "product_version"},
}

// SupportedIDs is the data-id set implemented by the R8810A bridge; a
// response for any other id is only acceptable as Unknown-DataId.
var SupportedIDs = map[int]bool{
	0x00: true, 0x01: true, 0x02: true, 0x03: true, 0x05: true, 0x06: true,
	0x0E: true, 0x10: true, 0x11: true, 0x12: true, 0x13: true, 0x18: true,
	0x19: true, 0x1A: true, 0x1B: true, 0x1C: true, 0x38: true, 0x39: true,
	0x73: true, 0x74: true, 0x75: true, 0x76: true, 0x77: true, 0x78: true,
	0x79: true, 0x7A: true, 0x7B: true, 0x7D: true, 0x7F: true,
}

// DecodeFrame decodes the 8 hex chars of an embedded OpenTherm frame.
func DecodeFrame(v string) (*Frame, error) {
	if len(v) != 8 {
		return nil, fmt.Errorf("opentherm frame is %d chars, expected 8", len(v))
	}
	raw, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid opentherm frame %q: %w", v, err)
	}

	f := &Frame{
		MsgType: msgTypes[raw>>28&0x07],
		MsgID:   int(raw >> 16 & 0xFF),
		Values:  map[string]any{},
	}

	s, ok := messages[f.MsgID]
	if !ok {
		return f, nil
	}
	f.Name = s.name
	f.Desc = s.desc

	hb, lb := int(raw>>8&0xFF), int(raw&0xFF)
	switch s.kind {
	case kindFlag8:
		f.Values[s.hb] = flag8(hb)
		f.Values[s.lb] = flag8(lb)
	case kindU8:
		f.Values[s.hb] = hb
		f.Values[s.lb] = lb
	case kindF88:
		val := int16(raw & 0xFFFF)
		f.Values[s.name] = float64(val) / 256
	case kindU16:
		f.Values[s.name] = hb<<8 | lb
	case kindS16:
		f.Values[s.name] = int(int16(raw & 0xFFFF))
	}
	return f, nil
}

func flag8(b int) [8]uint8 {
	var bits [8]uint8
	for i := 0; i < 8; i++ {
		bits[i] = uint8(b >> i & 1)
	}
	return bits
}
