// Package planfile loads project plans written in YAML.
//
//	name: Release prep
//	tasks:
//	  - name: Changelog
//	    minutes: 15
//	    break: 5
//	  - name: Tag and publish
//	    minutes: 20
package planfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/sprintr/internal/project"
)

// ErrInvalid is returned when a plan file parses but can't be run.
var ErrInvalid = errors.New("invalid plan file")

// Plan is the file representation of a project.
type Plan struct {
	Name  string `yaml:"name"`
	Tasks []Task `yaml:"tasks"`
}

type Task struct {
	Name    string `yaml:"name"`
	Minutes int    `yaml:"minutes"`
	Break   int    `yaml:"break,omitempty"`
}

// Load reads and validates a plan file.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a single YAML plan document. Unknown fields are rejected.
func Parse(r io.Reader) (Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Plan{}, fmt.Errorf("empty document: %w", ErrInvalid)
		}
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("at least one task is required: %w", ErrInvalid)
	}
	for i, t := range p.Tasks {
		if t.Minutes <= 0 {
			return fmt.Errorf("task %d: minutes must be positive: %w", i+1, ErrInvalid)
		}
		if t.Break < 0 {
			return fmt.Errorf("task %d: break can't be negative: %w", i+1, ErrInvalid)
		}
	}
	return nil
}

// ProjectTasks converts the plan into engine tasks. IDs are left empty for
// the engine to assign.
func (p Plan) ProjectTasks() []project.ProjectTask {
	tasks := make([]project.ProjectTask, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		tasks = append(tasks, project.ProjectTask{
			Name:             strings.TrimSpace(t.Name),
			EstimatedMinutes: t.Minutes,
			BreakMinutes:     t.Break,
		})
	}
	return tasks
}

// Marshal renders a plan back to YAML.
func Marshal(p Plan) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
