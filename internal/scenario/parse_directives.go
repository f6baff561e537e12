package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// splitKV splits a "key=value" token. ok is false for bare flags.
func splitKV(tok string) (key, value string, ok bool) {
	idx := strings.IndexByte(tok, '=')
	if idx < 0 {
		return tok, "", false
	}
	return tok[:idx], tok[idx+1:], true
}

func parseFloatField(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return f, nil
}

// parseTrack parses: track "Name" origin=<lat>,<lon> size=<m> author=<name>
func parseTrack(fields []string) (TrackDirective, error) {
	if len(fields) < 2 {
		return TrackDirective{}, fmt.Errorf("track directive needs a name")
	}
	track := TrackDirective{Name: fields[1]}

	for _, tok := range fields[2:] {
		key, value, ok := splitKV(tok)
		if !ok {
			return track, fmt.Errorf("unexpected track token %q", tok)
		}
		switch key {
		case "origin":
			parts := strings.SplitN(value, ",", 2)
			if len(parts) != 2 {
				return track, fmt.Errorf("origin wants lat,lon, got %q", value)
			}
			lat, err := parseFloatField("origin latitude", parts[0])
			if err != nil {
				return track, err
			}
			lon, err := parseFloatField("origin longitude", parts[1])
			if err != nil {
				return track, err
			}
			track.OriginLat, track.OriginLon = lat, lon
		case "size":
			size, err := parseFloatField(key, value)
			if err != nil {
				return track, err
			}
			track.SizeM = size
		case "author":
			track.Author = value
		default:
			return track, fmt.Errorf("unknown track option %q", key)
		}
	}
	return track, nil
}

// parseVehicle parses:
// vehicle <id> "Display Name" <classname> speed=<n> accel=<n> handling=<n> braking=<n> hp=<n> weight=<kg> [nitro]
func parseVehicle(fields []string) (VehicleDirective, error) {
	if len(fields) < 4 {
		return VehicleDirective{}, fmt.Errorf("vehicle directive wants: vehicle <id> <name> <classname> [stats...]")
	}

	id, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return VehicleDirective{}, fmt.Errorf("invalid vehicle id %q: %w", fields[1], err)
	}
	if id == 0 {
		return VehicleDirective{}, fmt.Errorf("vehicle id must be nonzero")
	}

	v := VehicleDirective{
		ID:          uint16(id),
		DisplayName: fields[2],
		ClassName:   fields[3],
	}

	for _, tok := range fields[4:] {
		key, value, ok := splitKV(tok)
		if !ok {
			if key == "nitro" {
				v.Stats.HasNitro = true
				continue
			}
			return v, fmt.Errorf("unexpected vehicle token %q", tok)
		}
		f, err := parseFloatField(key, value)
		if err != nil {
			return v, err
		}
		switch key {
		case "speed":
			v.Stats.Speed = f
		case "accel":
			v.Stats.Acceleration = f
		case "handling":
			v.Stats.Handling = f
		case "braking":
			v.Stats.Braking = f
		case "hp":
			v.Stats.Horsepower = f
		case "weight":
			v.Stats.WeightKg = f
		default:
			return v, fmt.Errorf("unknown vehicle stat %q", key)
		}
	}
	return v, nil
}

// parseAtTime pulls the timestamp out of fields[idx].
func parseAtTime(fields []string, idx int) (float64, error) {
	if len(fields) <= idx {
		return 0, fmt.Errorf("directive is missing a time")
	}
	t, err := strconv.ParseFloat(fields[idx], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", fields[idx], err)
	}
	if t < 0 {
		return 0, fmt.Errorf("time %v is negative", t)
	}
	return t, nil
}

func parseOnOff(key, value string) (bool, error) {
	switch value {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s value %q, want on/off", key, value)
}

// parseInputStep parses:
// at <t> [vehicle=<id>] [throttle=..] [brake=..] [steer=..] [handbrake[=on|off]] [nitro[=on|off]] [shift_up] [shift_down]
func parseInputStep(fields []string) (Step, error) {
	t, err := parseAtTime(fields, 1)
	if err != nil {
		return Step{}, err
	}
	step := Step{At: t, Kind: StepInput}

	boolPtr := func(b bool) *bool { return &b }

	for _, tok := range fields[2:] {
		key, value, hasValue := splitKV(tok)
		switch key {
		case "vehicle":
			id, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return step, fmt.Errorf("invalid vehicle id %q: %w", value, err)
			}
			step.VehicleID = uint16(id)
		case "throttle", "brake", "steer":
			f, err := parseFloatField(key, value)
			if err != nil {
				return step, err
			}
			switch key {
			case "throttle":
				step.Input.Throttle = &f
			case "brake":
				step.Input.Brake = &f
			case "steer":
				step.Input.Steer = &f
			}
		case "handbrake", "nitro":
			on := true
			if hasValue {
				if on, err = parseOnOff(key, value); err != nil {
					return step, err
				}
			}
			if key == "handbrake" {
				step.Input.Handbrake = boolPtr(on)
			} else {
				step.Input.Nitro = boolPtr(on)
			}
		case "shift_up":
			step.Input.ShiftUp = true
		case "shift_down":
			step.Input.ShiftDown = true
		default:
			return step, fmt.Errorf("unknown input token %q", tok)
		}
	}
	return step, nil
}

// parseWeatherStep parses: weather at <t> [vehicle=<id>] grip=<mult> wetness=<0..1>
func parseWeatherStep(fields []string) (Step, error) {
	if len(fields) < 3 || fields[1] != "at" {
		return Step{}, fmt.Errorf("weather directive wants: weather at <t> grip=.. wetness=..")
	}
	t, err := parseAtTime(fields, 2)
	if err != nil {
		return Step{}, err
	}
	step := Step{At: t, Kind: StepWeather, Grip: 1}

	for _, tok := range fields[3:] {
		key, value, ok := splitKV(tok)
		if !ok {
			return step, fmt.Errorf("unexpected weather token %q", tok)
		}
		switch key {
		case "vehicle":
			id, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return step, fmt.Errorf("invalid vehicle id %q: %w", value, err)
			}
			step.VehicleID = uint16(id)
		case "grip":
			if step.Grip, err = parseFloatField(key, value); err != nil {
				return step, err
			}
		case "wetness":
			if step.Wetness, err = parseFloatField(key, value); err != nil {
				return step, err
			}
		default:
			return step, fmt.Errorf("unknown weather option %q", key)
		}
	}
	return step, nil
}

// parseDamageStep parses: damage at <t> [vehicle=<id>] <0..1>
func parseDamageStep(fields []string) (Step, error) {
	if len(fields) < 4 || fields[1] != "at" {
		return Step{}, fmt.Errorf("damage directive wants: damage at <t> <value>")
	}
	t, err := parseAtTime(fields, 2)
	if err != nil {
		return Step{}, err
	}
	step := Step{At: t, Kind: StepDamage}

	for _, tok := range fields[3:] {
		if key, value, ok := splitKV(tok); ok {
			if key != "vehicle" {
				return step, fmt.Errorf("unknown damage option %q", key)
			}
			id, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return step, fmt.Errorf("invalid vehicle id %q: %w", value, err)
			}
			step.VehicleID = uint16(id)
			continue
		}
		if step.Damage, err = parseFloatField("damage", tok); err != nil {
			return step, err
		}
	}
	return step, nil
}

// parseDraftStep parses: draft at <t> [vehicle=<id>] on|off
func parseDraftStep(fields []string) (Step, error) {
	if len(fields) < 4 || fields[1] != "at" {
		return Step{}, fmt.Errorf("draft directive wants: draft at <t> on|off")
	}
	t, err := parseAtTime(fields, 2)
	if err != nil {
		return Step{}, err
	}
	step := Step{At: t, Kind: StepDraft}

	for _, tok := range fields[3:] {
		if key, value, ok := splitKV(tok); ok {
			if key != "vehicle" {
				return step, fmt.Errorf("unknown draft option %q", key)
			}
			id, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return step, fmt.Errorf("invalid vehicle id %q: %w", value, err)
			}
			step.VehicleID = uint16(id)
			continue
		}
		if step.DraftOn, err = parseOnOff("draft", tok); err != nil {
			return step, err
		}
	}
	return step, nil
}

// parseEnd parses: end <t>
func parseEnd(fields []string) (float64, error) {
	t, err := parseAtTime(fields, 1)
	if err != nil {
		return 0, err
	}
	if t == 0 {
		return 0, fmt.Errorf("end time must be positive")
	}
	return t, nil
}
