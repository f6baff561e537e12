// Package scenario parses the line-oriented script format that drives
// reproducible recording sessions.
//
// A script names a track, puts vehicles on the grid, and schedules
// timed directives:
//
//	track "Docks" origin=35.68,139.76 size=2048
//	vehicle 1 "Raven GT" raven_gt_s2 speed=142 accel=78 handling=66 braking=71 hp=560 weight=1420 nitro
//	at 0 throttle=1
//	at 2.5 steer=-0.4 handbrake
//	weather at 10 grip=0.85 wetness=0.6
//	damage at 12 vehicle=1 0.35
//	draft at 14 on
//	end 30
//
// Lines starting with # are comments.
package scenario

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/tommytrillva/midnight-sub001/internal/util"
)

// Service provides script parsing for the session runner.
type Service interface {
	ParseScript(src string) (*Script, error)
	ParseFile(path string) (*Script, error)
}

// Parser provides pure text -> Script conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

var _ Service = (*Parser)(nil)

// ParseFile reads and parses a script file.
func (p *Parser) ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	return p.ParseScript(string(data))
}

// ParseScript parses a full script. Steps come back sorted by time
// (stable, so same-time directives keep script order).
func (p *Parser) ParseScript(src string) (*Script, error) {
	script := &Script{}

	for i, line := range strings.Split(src, "\n") {
		lineNo := i + 1
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := util.SplitQuoted(line)
		var err error
		switch fields[0] {
		case "track":
			script.Track, err = parseTrack(fields)
		case "vehicle":
			var v VehicleDirective
			if v, err = parseVehicle(fields); err == nil {
				script.Vehicles = append(script.Vehicles, v)
			}
		case "at":
			var s Step
			if s, err = parseInputStep(fields); err == nil {
				script.Steps = append(script.Steps, s)
			}
		case "weather":
			var s Step
			if s, err = parseWeatherStep(fields); err == nil {
				script.Steps = append(script.Steps, s)
			}
		case "damage":
			var s Step
			if s, err = parseDamageStep(fields); err == nil {
				script.Steps = append(script.Steps, s)
			}
		case "draft":
			var s Step
			if s, err = parseDraftStep(fields); err == nil {
				script.Steps = append(script.Steps, s)
			}
		case "end":
			script.EndTime, err = parseEnd(fields)
		default:
			err = fmt.Errorf("unknown directive %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if len(script.Vehicles) == 0 {
		return nil, fmt.Errorf("script declares no vehicles")
	}
	if script.EndTime <= 0 {
		return nil, fmt.Errorf("script has no end time")
	}

	sort.SliceStable(script.Steps, func(i, j int) bool {
		return script.Steps[i].At < script.Steps[j].At
	})

	p.logger.Debug("Parsed scenario script",
		"track", script.Track.Name,
		"vehicles", len(script.Vehicles),
		"steps", len(script.Steps),
		"endTime", script.EndTime)

	return script, nil
}
