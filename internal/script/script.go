// Package script runs scope scripts: YAML files listing declarations,
// assignments, lookups and block boundaries that are replayed against a
// scope arena, with optional expectations checked after each step.
//
// A script looks like:
//
//	name: shadowing
//	steps:
//	  - define: x
//	    type: int
//	  - set: x
//	    value: "0x10"
//	  - block:
//	      - define: x
//	        type: string
//	      - get: x
//	        expect: {state: unassigned}
//	  - get: x
//	    expect: {value: "16"}
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/langkit/internal/config"
	"github.com/funvibe/langkit/pkg/scope"
)

// Script is a parsed scope script.
type Script struct {
	// Name labels the transcript. Defaults to the file name.
	Name string `yaml:"name,omitempty"`

	// Prelude overrides the global prelude setting for this script.
	Prelude *bool `yaml:"prelude,omitempty"`

	Steps []Step `yaml:"steps"`

	// Path is the file the script was read from.
	Path string `yaml:"-"`
}

// Step is one operation. Exactly one of the operation fields is set.
type Step struct {
	// Define declares a variable in the current scope.
	Define string `yaml:"define,omitempty"`

	// Set assigns Value to the nearest declaration.
	Set string `yaml:"set,omitempty"`

	// Get reads the value of the nearest declaration.
	Get string `yaml:"get,omitempty"`

	// Lookup reports the memory state of the nearest declaration.
	Lookup string `yaml:"lookup,omitempty"`

	// Resolve reports the nearest declaration and the scope holding it.
	Resolve string `yaml:"resolve,omitempty"`

	// Add stores Left + Right. Operands are variable names or literals. The
	// target is declared in the current scope when it is not visible.
	Add string `yaml:"add,omitempty"`

	Push bool `yaml:"push,omitempty"`
	Pop  bool `yaml:"pop,omitempty"`

	// Block runs nested steps in a fresh child scope.
	Block []Step `yaml:"block,omitempty"`

	// Type names the declared type of a define. Without it the variable is
	// untyped.
	Type string `yaml:"type,omitempty"`

	// Value is a literal: "quoted string", true, false, an integer
	// (0x, 0o, 0b prefixes allowed) or a float.
	Value string `yaml:"value,omitempty"`

	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists the checks made after a step. Empty fields are not checked.
type Expect struct {
	// Value is the display form of the value read or written.
	Value *string `yaml:"value,omitempty"`

	// State is undeclared, unassigned or assigned.
	State string `yaml:"state,omitempty"`

	// Symbol is the display form of the resolved symbol, e.g. "x:int".
	Symbol string `yaml:"symbol,omitempty"`

	// Error is a substring the step's error must contain. A step with an
	// expected error that succeeds fails the check.
	Error string `yaml:"error,omitempty"`
}

// Op names the step's operation.
func (s *Step) Op() string {
	ops := s.ops()
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// Target is the name the step operates on, if any.
func (s *Step) Target() string {
	switch s.Op() {
	case "define":
		return s.Define
	case "set":
		return s.Set
	case "get":
		return s.Get
	case "lookup":
		return s.Lookup
	case "resolve":
		return s.Resolve
	case "add":
		return s.Add
	default:
		return ""
	}
}

func (s *Step) ops() []string {
	var ops []string
	add := func(set bool, name string) {
		if set {
			ops = append(ops, name)
		}
	}
	add(s.Define != "", "define")
	add(s.Set != "", "set")
	add(s.Get != "", "get")
	add(s.Lookup != "", "lookup")
	add(s.Resolve != "", "resolve")
	add(s.Add != "", "add")
	add(s.Push, "push")
	add(s.Pop, "pop")
	add(s.Block != nil, "block")
	return ops
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return ParseScript(data, path)
}

// ParseScript parses script content from bytes.
// The path argument is used for error messages and the default name.
func ParseScript(data []byte, path string) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.Path = path
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults()
	return &s, nil
}

// IsScriptFile reports whether path has a script extension.
func IsScriptFile(path string) bool {
	for _, ext := range config.ScriptFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (s *Script) validate(path string) error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%s: no steps defined", path)
	}
	return validateSteps(path, "steps", s.Steps)
}

func validateSteps(path, prefix string, steps []Step) error {
	for i := range steps {
		step := &steps[i]
		where := fmt.Sprintf("%s[%d]", prefix, i)

		ops := step.ops()
		switch len(ops) {
		case 0:
			return fmt.Errorf("%s: %s: no operation given", path, where)
		case 1:
		default:
			return fmt.Errorf("%s: %s: operations %s are mutually exclusive", path, where, strings.Join(ops, ", "))
		}

		op := ops[0]
		if step.Type != "" && op != "define" {
			return fmt.Errorf("%s: %s: type is only valid with define", path, where)
		}
		if step.Value != "" && op != "define" && op != "set" {
			return fmt.Errorf("%s: %s: value is only valid with define and set", path, where)
		}
		if op == "set" && step.Value == "" {
			return fmt.Errorf("%s: %s: set requires a value", path, where)
		}
		if op != "add" && (step.Left != "" || step.Right != "") {
			return fmt.Errorf("%s: %s: left and right are only valid with add", path, where)
		}
		if op == "add" && (step.Left == "" || step.Right == "") {
			return fmt.Errorf("%s: %s: add requires left and right", path, where)
		}
		if e := step.Expect; e != nil && e.State != "" && !validState(e.State) {
			return fmt.Errorf("%s: %s: unknown state %q", path, where, e.State)
		}

		if op == "block" {
			if err := validateSteps(path, where+".block", step.Block); err != nil {
				return err
			}
		}
	}
	return nil
}

func validState(name string) bool {
	return slices.Contains([]string{
		scope.Undeclared.String(),
		scope.Unassigned.String(),
		scope.Assigned.String(),
	}, name)
}

func (s *Script) setDefaults() {
	if s.Name == "" && s.Path != "" {
		base := filepath.Base(s.Path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if s.Name == "" {
		s.Name = "script"
	}
}
