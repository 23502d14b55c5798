package padprobe

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// InputEvent is one timed write to the target's stdin: wait DelayBefore, then
// send Payload. Events are consumed strictly in order; an event's delay begins
// only after the previous event's write completed.
type InputEvent struct {
	DelayBefore time.Duration
	Payload     []byte
}

// UnmarshalYAML decodes an event of the form:
//
//	- after: 700ms
//	  send: "q"
//
// or, for the shutdown token:
//
//	- after: 100ms
//	  quit: true
//
// "after" defaults to zero; "send" and "quit" are mutually exclusive.
func (ev *InputEvent) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		After string `yaml:"after"`
		Send  string `yaml:"send"`
		Quit  bool   `yaml:"quit"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.After != "" {
		d, err := time.ParseDuration(raw.After)
		if err != nil {
			return fmt.Errorf("event %q: %w", raw.After, err)
		}
		ev.DelayBefore = d
	}

	switch {
	case raw.Quit && raw.Send != "":
		return fmt.Errorf("event: send and quit are mutually exclusive")
	case raw.Quit:
		ev.Payload = Quit()
	default:
		ev.Payload = []byte(raw.Send)
	}
	return nil
}

// Scenario is a declarative description of one harness run. It is immutable
// once constructed and owned exclusively by the run that consumes it.
type Scenario struct {
	// Name identifies the scenario in results and logs.
	Name string `yaml:"name"`

	// Command is the target executable path; Args are its arguments.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// Dir is the working directory for the target (empty means inherit).
	Dir string `yaml:"dir"`

	// Env appends "KEY=VALUE" entries to the target's environment.
	Env []string `yaml:"env"`

	// Events is the ordered input sequence written to the target's stdin.
	Events []InputEvent `yaml:"events"`

	// Markers are the literal diagnostic strings whose presence indicates
	// full success. MarkerPrefix is the namespace of related diagnostic
	// lines; a prefix-only hit classifies the run as Partial.
	Markers      []string `yaml:"markers"`
	MarkerPrefix string   `yaml:"marker-prefix"`

	// MarkersOnStdout widens the marker search to include stdout, for
	// targets that merge their diagnostics into the output stream.
	MarkersOnStdout bool `yaml:"markers-on-stdout"`

	// ExitCodes are the acceptable natural exit codes. Empty means {0}.
	ExitCodes []int `yaml:"exit-codes"`

	// ExpectTimeout marks scenarios that deliberately never shut the target
	// down; a timeout kill then counts as acceptable completion.
	ExpectTimeout bool `yaml:"expect-timeout"`

	// Timeout overrides the engine's run timeout for this scenario.
	// Zero means use the engine default.
	Timeout time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes a scenario, parsing "timeout" as a duration string.
func (sc *Scenario) UnmarshalYAML(value *yaml.Node) error {
	type plain Scenario
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}

	var extra struct {
		Timeout string `yaml:"timeout"`
	}
	if err := value.Decode(&extra); err != nil {
		return err
	}

	*sc = Scenario(raw)
	if extra.Timeout != "" {
		d, err := time.ParseDuration(extra.Timeout)
		if err != nil {
			return fmt.Errorf("scenario %q: timeout: %w", sc.Name, err)
		}
		sc.Timeout = d
	}
	return nil
}

// Validate checks the scenario for structural defects without spawning
// anything: a missing command, an empty payload, or a negative delay.
func (sc *Scenario) Validate() error {
	if sc.Command == "" {
		return fmt.Errorf("padprobe: scenario %q: command is required", sc.Name)
	}
	for i, ev := range sc.Events {
		if len(ev.Payload) == 0 {
			return fmt.Errorf("padprobe: scenario %q: event %d has an empty payload", sc.Name, i)
		}
		if ev.DelayBefore < 0 {
			return fmt.Errorf("padprobe: scenario %q: event %d has a negative delay", sc.Name, i)
		}
	}
	if sc.Timeout < 0 {
		return fmt.Errorf("padprobe: scenario %q: negative timeout", sc.Name)
	}
	return nil
}

// acceptableExitCodes returns the acceptable exit code set, defaulting to {0}.
func (sc *Scenario) acceptableExitCodes() []int {
	if len(sc.ExitCodes) == 0 {
		return []int{0}
	}
	return sc.ExitCodes
}

// LoadSuite reads an ordered list of scenarios from a YAML file:
//
//	scenarios:
//	  - name: hold-past-threshold
//	    command: ./trellis_simulation
//	    dir: build-simulation
//	    timeout: 5s
//	    markers:
//	      - "PARAM_LOCK: Successfully entered parameter lock mode"
//	    marker-prefix: "PARAM_LOCK:"
//	    events:
//	      - send: "Q"
//	      - after: 700ms
//	        send: "q"
//	      - after: 100ms
//	        quit: true
//
// Every scenario is validated; the first invalid one fails the load.
func LoadSuite(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("padprobe: load suite: %w", err)
	}

	var suite struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("padprobe: load suite %s: %w", path, err)
	}
	if len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("padprobe: load suite %s: no scenarios", path)
	}

	for i := range suite.Scenarios {
		if err := suite.Scenarios[i].Validate(); err != nil {
			return nil, err
		}
	}
	return suite.Scenarios, nil
}
