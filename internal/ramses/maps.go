package ramses

// Zone mode bytes (2349, 1F41) and their names.
const (
	ZoneModeFollow    = "follow_schedule"
	ZoneModeAdvanced  = "advanced_override" // until the next scheduled switchpoint
	ZoneModePermanent = "permanent_override"
	ZoneModeCountdown = "countdown_override" // for a duration in minutes
	ZoneModeTemporary = "temporary_override" // until a given moment
)

// ZoneModeMap maps the wire byte to the mode name.
var ZoneModeMap = map[string]string{
	"00": ZoneModeFollow,
	"01": ZoneModeAdvanced,
	"02": ZoneModePermanent,
	"03": ZoneModeCountdown,
	"04": ZoneModeTemporary,
}

// ZoneModeHex is the inverse of ZoneModeMap.
var ZoneModeHex = invert(ZoneModeMap)

// SystemModeMap maps the 2E04 mode byte to its name.
var SystemModeMap = map[string]string{
	"00": "auto",
	"01": "heat_off",
	"02": "eco_boost",
	"03": "away",
	"04": "day_off",
	"05": "day_off_eco",
	"06": "auto_with_reset",
	"07": "custom",
}

// SystemModeHex is the inverse of SystemModeMap.
var SystemModeHex = invert(SystemModeMap)

// Fault-log (0418) field enumerations.
var (
	FaultState = map[string]string{
		"00": "fault",
		"40": "restore",
		"C0": "unknown_c0",
	}

	FaultType = map[string]string{
		"01": "system_fault",
		"03": "mains_low",
		"04": "battery_low",
		"05": "battery_error",
		"06": "comms_fault",
		"0A": "sensor_error",
	}

	FaultDeviceClass = map[string]string{
		"00": "controller",
		"01": "sensor",
		"04": "actuator",
		"05": "dhw_sensor",
		"06": "remote_gateway",
	}
)

// HeatingControl is the device-class name reported for the boiler relay.
// A fault against domain FC with class "actuator" is re-labelled to it.
const HeatingControl = "heating_control"

// ZoneKind names the 0005 zone-type byte.
var ZoneKind = map[string]string{
	"00": "configured_zones",
	"01": "all_sensors",
	"04": "stat_zones",
	"08": "ufh_zones",
	"09": "rad_zones",
	"0A": "valve_zones",
	"0B": "mix_zones",
	"0D": "dhw_sensor",
	"0E": "dhw_valve",
	"0F": "htg_control",
	"10": "zones_alt",
	"11": "electric_zones",
}

// DeviceClass names the 000C device-class byte. DHWValve/DHWValveHtg and
// HtgControl classes address domains FA/FC rather than a zone.
var DeviceClass = map[string]string{
	"00": "zone_sensor",
	"04": "rad_actuators",
	"08": "ufh_actuators",
	"09": "valve_actuators",
	"0A": "mix_actuators",
	"0B": "electric_actuators",
	"0D": "dhw_sensor",
	"0E": "hotwater_valve",
	"0F": "heating_control",
}

// FanSwitchModes names the step index of a 22F1 fan switch event.
var FanSwitchModes = map[int]string{
	0: "standby",
	1: "auto",
	2: "low",
	3: "high",
	4: "away",
}

// HeaterModes names the 22F1 steps reused by heater switches.
var HeaterModes = map[int]string{
	9:  "off",
	10: "auto",
}

// FanInfo names the low 5 bits of the 31DA fan-info byte.
var FanInfo = map[int]string{
	0x00: "off",
	0x01: "speed 1",
	0x02: "speed 2",
	0x03: "speed 3",
	0x04: "speed 4",
	0x05: "speed 5",
	0x06: "speed 6",
	0x07: "speed 7",
	0x08: "speed 8",
	0x09: "speed 9",
	0x0A: "speed 10",
	0x0B: "speed 1 temporary override",
	0x0C: "speed 2 temporary override",
	0x0D: "speed 3 temporary override",
	0x0E: "speed 4 temporary override",
	0x0F: "speed 5 temporary override",
	0x10: "speed 6 temporary override",
	0x11: "speed 7 temporary override",
	0x12: "speed 8 temporary override",
	0x13: "speed 9 temporary override",
	0x14: "speed 10 temporary override",
	0x15: "away",
	0x16: "absolute minimum",
	0x17: "absolute maximum",
	0x18: "auto",
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
