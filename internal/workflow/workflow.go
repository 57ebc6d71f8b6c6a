// Package workflow models the normative stage sequence an issue moves
// through. Declaration order is semantically significant: it is both the
// display order and the simulation order consumed by stage-date
// reconstruction.
package workflow

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage is one named step of a workflow. Statuses lists the raw Jira status
// names that map onto the stage; the stage-date core uses only Name and
// position.
type Stage struct {
	Name     string
	Statuses []string
}

// Workflow is an ordered sequence of uniquely named stages.
type Workflow struct {
	stages []Stage
	index  map[string]int
}

// New builds a Workflow from stages in declaration order.
func New(stages []Stage) (*Workflow, error) {
	w := &Workflow{index: make(map[string]int, len(stages))}
	for _, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("workflow: empty stage name")
		}
		if _, dup := w.index[s.Name]; dup {
			return nil, fmt.Errorf("workflow: duplicate stage %q", s.Name)
		}
		w.index[s.Name] = len(w.stages)
		w.stages = append(w.stages, s)
	}
	return w, nil
}

// Stages returns the stages in declaration order.
func (w *Workflow) Stages() []Stage {
	return w.stages
}

// StageNames returns the stage names in declaration order.
func (w *Workflow) StageNames() []string {
	names := make([]string, len(w.stages))
	for i, s := range w.stages {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of stages.
func (w *Workflow) Len() int {
	return len(w.stages)
}

// Contains reports whether name is a stage of the workflow.
func (w *Workflow) Contains(name string) bool {
	_, ok := w.index[name]
	return ok
}

// UnmarshalYAML decodes a YAML mapping of stage name to status list,
// preserving the mapping's key order. yaml.v3 surfaces mappings through
// yaml.Node content pairs, which is the only way to keep declaration order.
func (w *Workflow) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("workflow: expected a mapping of stage name to statuses")
	}

	var stages []Stage
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var statuses []string
		switch valNode.Kind {
		case yaml.SequenceNode:
			if err := valNode.Decode(&statuses); err != nil {
				return fmt.Errorf("workflow: stage %q: %w", keyNode.Value, err)
			}
		case yaml.ScalarNode:
			if valNode.Value != "" && valNode.Tag != "!!null" {
				statuses = []string{valNode.Value}
			}
		default:
			return fmt.Errorf("workflow: stage %q: expected status list", keyNode.Value)
		}

		stages = append(stages, Stage{Name: keyNode.Value, Statuses: statuses})
	}

	built, err := New(stages)
	if err != nil {
		return err
	}
	*w = *built
	return nil
}

// ActiveSet is the subset of workflow stages whose business-day duration,
// rather than entry timestamp, is the meaningful signal.
type ActiveSet map[string]bool

// NewActiveSet builds an ActiveSet from stage names.
func NewActiveSet(names []string) ActiveSet {
	set := make(ActiveSet, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Validate fails when an active status is not a member of the workflow.
// This is a caller contract violation and must surface, not degrade.
func (a ActiveSet) Validate(w *Workflow) error {
	for name := range a {
		if !w.Contains(name) {
			return fmt.Errorf("active status %q is not a workflow stage", name)
		}
	}
	return nil
}
