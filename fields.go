package fitdecoder

// recordField describes how one record-message field number maps into a
// normalized Record: the output key plus the profile's scale and offset.
// A zero scale means the raw integer passes through unscaled; a nonzero
// scale converts to float64 as raw/scale - offset.
type recordField struct {
	name   string
	scale  float64
	offset float64
}

// recordFields covers the record message (global number 20). Field 253,
// the timestamp, is handled separately and is deliberately absent here.
var recordFields = map[uint8]recordField{
	0:  {name: "position_lat"},
	1:  {name: "position_long"},
	2:  {name: "altitude", scale: 5, offset: 500},
	3:  {name: "heart_rate"},
	4:  {name: "cadence"},
	5:  {name: "distance", scale: 100},
	6:  {name: "speed", scale: 1000},
	7:  {name: "power"},
	9:  {name: "grade", scale: 100},
	10: {name: "resistance"},
	11: {name: "time_from_course", scale: 1000},
	12: {name: "cycle_length", scale: 100},
	13: {name: "temperature"},
	18: {name: "cycles"},
	19: {name: "total_cycles"},
	29: {name: "accumulated_power"},
	30: {name: "left_right_balance"},
	31: {name: "gps_accuracy"},
	32: {name: "vertical_speed", scale: 1000},
	33: {name: "calories"},
	39: {name: "vertical_oscillation", scale: 10},
	40: {name: "stance_time_percent", scale: 100},
	41: {name: "stance_time", scale: 10},
	42: {name: "activity_type"},
	43: {name: "left_torque_effectiveness", scale: 2},
	44: {name: "right_torque_effectiveness", scale: 2},
	45: {name: "left_pedal_smoothness", scale: 2},
	46: {name: "right_pedal_smoothness", scale: 2},
	47: {name: "combined_pedal_smoothness", scale: 2},
	48: {name: "time128", scale: 128},
	49: {name: "stroke_type"},
	50: {name: "zone"},
	51: {name: "ball_speed", scale: 100},
	52: {name: "cadence256", scale: 256},
	53: {name: "fractional_cadence", scale: 128},
	54: {name: "total_hemoglobin_conc", scale: 100},
	55: {name: "total_hemoglobin_conc_min", scale: 100},
	56: {name: "total_hemoglobin_conc_max", scale: 100},
	57: {name: "saturated_hemoglobin_percent", scale: 10},
	58: {name: "saturated_hemoglobin_percent_min", scale: 10},
	59: {name: "saturated_hemoglobin_percent_max", scale: 10},
	62: {name: "device_index"},
	67: {name: "left_pco"},
	68: {name: "right_pco"},
	73: {name: "enhanced_speed", scale: 1000},
	78: {name: "enhanced_altitude", scale: 5, offset: 500},
	81: {name: "battery_soc", scale: 2},
	82: {name: "motor_power"},
	83: {name: "vertical_ratio", scale: 100},
	84: {name: "stance_time_balance", scale: 100},
	85: {name: "step_length", scale: 10},
	87: {name: "cycle_length16", scale: 100},
	91: {name: "absolute_pressure"},
	92: {name: "depth", scale: 1000},
	93: {name: "next_stop_depth", scale: 1000},
	94: {name: "next_stop_time"},
	95: {name: "time_to_surface"},
	96: {name: "ndl_time"},
	97: {name: "cns_load"},
	98: {name: "n2_load"},
	99: {name: "respiration_rate"},
	108: {name: "enhanced_respiration_rate", scale: 100},
	114: {name: "grit"},
	115: {name: "flow"},
	116: {name: "current_stress", scale: 100},
	117: {name: "ebike_travel_range"},
	118: {name: "ebike_battery_level"},
	119: {name: "ebike_assist_mode"},
	120: {name: "ebike_assist_level_percent"},
	123: {name: "air_time_remaining"},
	124: {name: "pressure_sac", scale: 100},
	125: {name: "volume_sac", scale: 100},
	126: {name: "rmv", scale: 100},
	127: {name: "ascent_rate", scale: 1000},
	129: {name: "po2", scale: 100},
	139: {name: "core_temperature", scale: 100},
}
