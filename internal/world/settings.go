package world

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Settings is the server settings store. Values are plain ints; each has a
// valid range enforced by Set.
type Settings struct {
	values map[string]int
}

type settingSpec struct {
	def, min, max int
	help          string
}

var settingSpecs = map[string]settingSpec{
	"aifill":      {def: 5, min: 0, max: 16, help: "AI players created automatically"},
	"endturn":     {def: 5000, min: 1, max: 32767, help: "turn at which the game ends"},
	"landpercent": {def: 30, min: 15, max: 85, help: "percentage of land tiles"},
	"citymindist": {def: 2, min: 1, max: 9, help: "minimum distance between cities"},
	"animals":     {def: 20, min: 0, max: 500, help: "wildlife per thousand land tiles"},
	"dispersion":  {def: 0, min: 0, max: 4, help: "start unit spread around the start tile"},
}

func newSettings() *Settings {
	s := &Settings{values: make(map[string]int, len(settingSpecs))}
	for name, spec := range settingSpecs {
		s.values[name] = spec.def
	}
	return s
}

// Get returns a setting value; unknown names return 0.
func (s *Settings) Get(name string) int {
	return s.values[name]
}

// Set changes a setting, rejecting unknown names and out-of-range values.
func (s *Settings) Set(name string, v int) error {
	spec, ok := settingSpecs[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	if v < spec.min || v > spec.max {
		return fmt.Errorf("setting %s: %d out of range [%d, %d]", name, v, spec.min, spec.max)
	}
	s.values[name] = v
	return nil
}

// Names lists the settings in alphabetical order.
func (s *Settings) Names() []string {
	names := make([]string, 0, len(settingSpecs))
	for name := range settingSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type commandFunc func(s *Server, args []string) (string, error)

func defaultCommands() map[string]commandFunc {
	return map[string]commandFunc{
		"set":  cmdSet,
		"show": cmdShow,
	}
}

// Execute runs one console command line, e.g. "set aifill 0" or "show endturn".
func (s *Server) Execute(line string) (string, error) {
	if !s.initialized {
		return "", ErrNotInitialized
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}
	cmd, ok := s.commands[fields[0]]
	if !ok {
		return "", fmt.Errorf("unknown command %q", fields[0])
	}
	return cmd(s, fields[1:])
}

func cmdSet(s *Server, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: set <name> <value>")
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("set %s: %w", args[0], err)
	}
	if err := s.settings.Set(args[0], v); err != nil {
		return "", err
	}
	if args[0] == "endturn" && s.game != nil {
		s.game.Info.EndTurn = v
	}
	return fmt.Sprintf("%s = %d", args[0], v), nil
}

func cmdShow(s *Server, args []string) (string, error) {
	names := args
	if len(names) == 0 {
		names = s.settings.Names()
	}
	var b strings.Builder
	for i, name := range names {
		spec, ok := settingSpecs[name]
		if !ok {
			return "", fmt.Errorf("unknown setting %q", name)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-12s %6d  %s", name, s.settings.Get(name), spec.help)
	}
	return b.String(), nil
}
