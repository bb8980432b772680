// Package checklist provides the static, session-grouped daily trading
// checklist. A Checklist is loaded once at startup and never mutated.
package checklist

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is one labelled block of ordered tasks.
type Section struct {
	Label string   `yaml:"label" json:"label"`
	Tasks []string `yaml:"tasks" json:"tasks"`
}

// Checklist is an ordered list of sections.
type Checklist struct {
	sections []Section
	index    map[TaskKey]struct{}
}

type file struct {
	Sections []Section `yaml:"sections"`
}

// New builds a checklist from sections, rejecting blank or duplicate
// labels and tasks.
func New(sections []Section) (*Checklist, error) {
	if len(sections) == 0 {
		return nil, errors.New("checklist has no sections")
	}
	c := &Checklist{index: make(map[TaskKey]struct{})}
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return nil, errors.New("checklist section with empty label")
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate checklist section %q", label)
		}
		seen[label] = true
		if len(s.Tasks) == 0 {
			return nil, fmt.Errorf("checklist section %q has no tasks", label)
		}

		sec := Section{Label: label, Tasks: make([]string, 0, len(s.Tasks))}
		for _, task := range s.Tasks {
			task = strings.TrimSpace(task)
			if task == "" {
				return nil, fmt.Errorf("checklist section %q has an empty task", label)
			}
			k := Key(label, task)
			if _, dup := c.index[k]; dup {
				return nil, fmt.Errorf("duplicate task %q in section %q", task, label)
			}
			c.index[k] = struct{}{}
			sec.Tasks = append(sec.Tasks, task)
		}
		c.sections = append(c.sections, sec)
	}
	return c, nil
}

// Load reads a checklist YAML file. An empty path yields Default().
func Load(path string) (*Checklist, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing checklist %s: %w", path, err)
	}
	return New(f.Sections)
}

// TaskKey identifies a task within the checklist. Section and task are
// compared as separate fields, so no pair of labels can alias another.
type TaskKey struct {
	Section string
	Task    string
}

// Key returns the TaskKey for (section, task).
func Key(section, task string) TaskKey {
	return TaskKey{Section: section, Task: task}
}

// Has reports whether (section, task) names a checklist task.
func (c *Checklist) Has(section, task string) bool {
	_, ok := c.index[Key(section, task)]
	return ok
}

// Sections returns a copy of the sections in order.
func (c *Checklist) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		out[i] = Section{Label: s.Label, Tasks: append([]string(nil), s.Tasks...)}
	}
	return out
}

// TaskCount returns the total number of tasks.
func (c *Checklist) TaskCount() int {
	return len(c.index)
}

// Default returns the built-in intraday routine for leveraged Nasdaq ETFs.
func Default() *Checklist {
	c, err := New(defaultSections)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultSections = []Section{
	{
		Label: "Pre-Market (8:00am – 9:20am)",
		Tasks: []string{
			"Check NQ Futures trend",
			"Review VIX movement",
			"Scan TQQQ/SQQQ pre-market volume",
			"Identify key economic data releases today",
			"Update market breadth indicators",
			"Determine initial directional bias",
			"Note any relevant news headlines",
		},
	},
	{
		Label: "Opening Session (9:30am – 10:30am)",
		Tasks: []string{
			"Observe opening 5-min candle direction",
			"Watch for early momentum shifts",
			"Track volume confirmation",
			"Set alerts near overnight highs/lows",
			"Confirm price action aligns with bias",
		},
	},
	{
		Label: "Mid-Day Review (12:00pm – 1:30pm)",
		Tasks: []string{
			"Reassess market breadth and volume trends",
			"Adjust levels or directional bias if needed",
			"Watch for reversal signs / trend continuation",
			"Manage open trades or set alerts for re-entry",
		},
	},
	{
		Label: "Late Session (2:30pm – 3:50pm)",
		Tasks: []string{
			"Observe end-of-day directional momentum",
			"Trim or close positions based on risk/reward",
			"Watch for volume spikes",
			"Consider hedging if exposure is high into close",
		},
	},
	{
		Label: "Post-Market Review (4:00pm – 5:00pm)",
		Tasks: []string{
			"Review how trades aligned with setup",
			"Journal key learnings from today",
			"Update trade log",
			"Identify areas for improvement",
		},
	},
}
