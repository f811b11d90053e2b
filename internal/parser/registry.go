// Package parser decodes validated RAMSES-II payloads into records of
// typed fields. Each message code has one payload parser; all of them go
// through the shared frame validation in validate.go.
package parser

import (
	"go.uber.org/zap"

	"github.com/evohub/ramses/internal/frame"
	"github.com/evohub/ramses/internal/logging"
	"github.com/evohub/ramses/internal/ramses"
)

var parsers = map[frame.Code]func(Meta) (*Result, error){
	ramses.CodeRFUnknown:     validated(ramses.CodeRFUnknown, parseRFUnknown),
	ramses.CodeOutdoorSensor: validated(ramses.CodeOutdoorSensor, parseOutdoorSensor),
	ramses.CodeZoneName:      validated(ramses.CodeZoneName, parseZoneName),
	ramses.CodeSystemZones:   validated(ramses.CodeSystemZones, parseSystemZones),
	ramses.CodeScheduleSync:  validated(ramses.CodeScheduleSync, parseScheduleSync),
	ramses.CodeRelayDemand:   validated(ramses.CodeRelayDemand, parseRelayDemand),
	ramses.CodeRelayFailsafe: validated(ramses.CodeRelayFailsafe, parseRelayFailsafe),
	ramses.CodeZoneParams:    validated(ramses.CodeZoneParams, parseZoneParams),
	ramses.CodeZoneDevices:   validated(ramses.CodeZoneDevices, parseZoneDevices),
	"000E":                   validated("000E", parseMessage000E),
	ramses.CodeRFCheck:       validated(ramses.CodeRFCheck, parseRFCheck),
	ramses.CodeLanguage:      validated(ramses.CodeLanguage, parseLanguage),
	"01D0":                   validated("01D0", parseValveEvent),
	"01E9":                   validated("01E9", parseValveEvent),
	ramses.CodeZoneSchedule:  validated(ramses.CodeZoneSchedule, parseZoneSchedule),
	ramses.CodeSystemFault:   validated(ramses.CodeSystemFault, parseSystemFault),
	"042F":                   validated("042F", parseCounters),
	"0B04":                   validated("0B04", parseHeartbeat),
	ramses.CodeMixValve:      validated(ramses.CodeMixValve, parseMixValveParams),
	ramses.CodeBattery:       validated(ramses.CodeBattery, parseBattery),
	"1090":                   validated("1090", parseTempPair),
	ramses.CodeDHWParams:     validated(ramses.CodeDHWParams, parseDHWParams),
	ramses.CodeDeviceInfo:    validated(ramses.CodeDeviceInfo, parseDeviceInfo),
	ramses.CodeTPIParams:     validated(ramses.CodeTPIParams, parseTPIParams),
	ramses.CodeDHWTemp:       validated(ramses.CodeDHWTemp, parseDHWTemp),
	ramses.CodeOutdoorTemp:   validated(ramses.CodeOutdoorTemp, parseTemperature),
	"1298":                   validated("1298", parseCO2Level),
	"12A0":                   validated("12A0", parseIndoorHumidity),
	ramses.CodeWindowState:   validated(ramses.CodeWindowState, parseWindowState),
	"12C0":                   validated("12C0", parseDisplayedTemp),
	"12C8":                   validated("12C8", parseMessage12C8),
	ramses.CodeSystemSync:    validated(ramses.CodeSystemSync, parseSystemSync),
	ramses.CodeDHWMode:       validated(ramses.CodeDHWMode, parseDHWMode),
	ramses.CodeRFBind:        validated(ramses.CodeRFBind, parseRFBind),
	"1FD4":                   validated("1FD4", parseOpenThermSync),
	ramses.CodeSetpointNow:   validated(ramses.CodeSetpointNow, parseSetpointNow),
	ramses.CodeUFHSetpoint:   validated(ramses.CodeUFHSetpoint, parseUFHSetpoint),
	"22D0":                   validated("22D0", parseMessage22D0),
	ramses.CodeBoilerSetpt:   validated(ramses.CodeBoilerSetpt, parseBoilerSetpoint),
	"22F1":                   validated("22F1", parseSwitchMode),
	"22F3":                   validated("22F3", parseSwitchBoost),
	ramses.CodeSetpoint:      validated(ramses.CodeSetpoint, parseSetpoint),
	ramses.CodeZoneMode:      validated(ramses.CodeZoneMode, parseZoneMode),
	"2D49":                   validated("2D49", parseMessage2D49),
	ramses.CodeSystemMode:    validated(ramses.CodeSystemMode, parseSystemMode),
	ramses.CodeTemperature:   validated(ramses.CodeTemperature, parseTemperature),
	"3120":                   validated("3120", parseMessage3120),
	ramses.CodeDateTime:      validated(ramses.CodeDateTime, parseDateTime),
	ramses.CodeHeatDemand:    validated(ramses.CodeHeatDemand, parseHeatDemand),
	ramses.CodeVentStatus:    validated(ramses.CodeVentStatus, parseVentState),
	ramses.CodeVentExtended:  validated(ramses.CodeVentExtended, parseVentStateExtended),
	"31E0":                   validated("31E0", parseVentDemand),
	ramses.CodeOpenTherm:     validated(ramses.CodeOpenTherm, parseOpenTherm),
	ramses.CodeActuatorSync:  validated(ramses.CodeActuatorSync, parseActuatorSync),
	ramses.CodeActuatorState: validated(ramses.CodeActuatorState, parseActuatorState),
	ramses.CodeActuatorCycle: validated(ramses.CodeActuatorCycle, parseActuatorCycle),
	ramses.CodePuzzle:        validated(ramses.CodePuzzle, parsePuzzle),
}

// Parse decodes the payload of a frame. A frame that fails validation or
// decoding returns a ProtocolError; callers that want the lenient policy
// use ParsePayload instead.
func Parse(f *frame.Frame, maxZones int) (*Result, error) {
	fn, ok := parsers[f.Code]
	if !ok {
		return nil, NewNotImplementedError(string(f.Code))
	}
	return fn(MetaFromFrame(f, maxZones))
}

// ParsePayload decodes a frame, logging and swallowing faults. A corrupt
// or unsupported frame yields nil: one bad packet on the air must not take
// down a listener.
func ParsePayload(f *frame.Frame, maxZones int) *Result {
	result, err := Parse(f, maxZones)
	if err != nil {
		logging.Warn("payload not decoded",
			zap.String("verb", string(f.Verb)),
			zap.String("code", string(f.Code)),
			zap.String("src", f.Src.ID),
			zap.String("dst", f.Dst.ID),
			zap.String("payload", f.Payload),
			zap.Error(err),
		)
		return nil
	}
	return result
}
