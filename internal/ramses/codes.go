package ramses

import "github.com/evohub/ramses/internal/frame"

// Message codes used by constructors and special-case parser logic. The
// complete set, with payload shapes, lives in tables.yaml.
const (
	CodeRFUnknown     frame.Code = "0001"
	CodeOutdoorSensor frame.Code = "0002"
	CodeZoneName      frame.Code = "0004"
	CodeSystemZones   frame.Code = "0005"
	CodeScheduleSync  frame.Code = "0006"
	CodeRelayDemand   frame.Code = "0008"
	CodeRelayFailsafe frame.Code = "0009"
	CodeZoneParams    frame.Code = "000A"
	CodeZoneDevices   frame.Code = "000C"
	CodeRFCheck       frame.Code = "0016"
	CodeLanguage      frame.Code = "0100"
	CodeZoneSchedule  frame.Code = "0404"
	CodeSystemFault   frame.Code = "0418"
	CodeMixValve      frame.Code = "1030"
	CodeBattery       frame.Code = "1060"
	CodeDHWParams     frame.Code = "10A0"
	CodeDeviceInfo    frame.Code = "10E0"
	CodeTPIParams     frame.Code = "1100"
	CodeDHWTemp       frame.Code = "1260"
	CodeOutdoorTemp   frame.Code = "1290"
	CodeWindowState   frame.Code = "12B0"
	CodeSystemSync    frame.Code = "1F09"
	CodeDHWMode       frame.Code = "1F41"
	CodeRFBind        frame.Code = "1FC9"
	CodeSetpointNow   frame.Code = "2249"
	CodeUFHSetpoint   frame.Code = "22C9"
	CodeBoilerSetpt   frame.Code = "22D9"
	CodeSetpoint      frame.Code = "2309"
	CodeZoneMode      frame.Code = "2349"
	CodeSystemMode    frame.Code = "2E04"
	CodeTemperature   frame.Code = "30C9"
	CodeDateTime      frame.Code = "313F"
	CodeHeatDemand    frame.Code = "3150"
	CodeVentStatus    frame.Code = "31D9"
	CodeVentExtended  frame.Code = "31DA"
	CodeOpenTherm     frame.Code = "3220"
	CodeActuatorSync  frame.Code = "3B00"
	CodeActuatorState frame.Code = "3EF0"
	CodeActuatorCycle frame.Code = "3EF1"
	CodePuzzle        frame.Code = "7FFF"
)

// Domain ids carried in place of a zone index.
const (
	DomainDHWValveHtg = "F9" // heating valve of a stored-HW system
	DomainDHWValve    = "FA" // hot-water valve
	DomainHtgControl  = "FC" // boiler/heating control relay
)

// IsDomainID reports whether an index byte addresses a system domain rather
// than a zone.
func IsDomainID(idx string) bool {
	return idx == DomainDHWValveHtg || idx == DomainDHWValve || idx == DomainHtgControl
}
