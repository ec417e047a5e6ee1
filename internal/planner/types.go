package planner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Action is the filesystem effect recorded for one operation.
type Action int

const (
	ActionCopy Action = iota
	ActionHardlink
	ActionSymlink
)

func (a Action) String() string {
	switch a {
	case ActionHardlink:
		return "hardlink"
	case ActionSymlink:
		return "symlink"
	default:
		return "copy"
	}
}

// LinkPreference is what the caller asked for; the planner downgrades it per
// entry when the filesystem cannot honour it.
type LinkPreference string

const (
	LinkCopy     LinkPreference = "copy"
	LinkHardlink LinkPreference = "hardlink"
	LinkSymlink  LinkPreference = "symlink"
	LinkAuto     LinkPreference = "auto"
)

// ParseLinkPreference accepts copy, hardlink, symlink or auto.
func ParseLinkPreference(value string) (LinkPreference, error) {
	switch pref := LinkPreference(strings.ToLower(strings.TrimSpace(value))); pref {
	case LinkCopy, LinkHardlink, LinkSymlink, LinkAuto:
		return pref, nil
	case "":
		return LinkAuto, nil
	default:
		return "", fmt.Errorf("unknown link mode %q (want copy, hardlink, symlink or auto)", value)
	}
}

func (p LinkPreference) wantsHardlink() bool { return p == LinkHardlink || p == LinkAuto }

func (p LinkPreference) wantsSymlink() bool { return p == LinkSymlink || p == LinkAuto }

// Operation is one planned filesystem effect.
type Operation struct {
	Source      string
	Destination string
	Action      Action
}

// OperationPlan is the ordered, immutable result of planning. Destinations are
// pairwise distinct and every source appears at most once.
type OperationPlan struct {
	Root       string
	Operations []Operation
	// Skipped lists sources dropped because they were already processed.
	Skipped []string
}

// Len returns the number of planned operations.
func (p *OperationPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Operations)
}

// Relative returns the destination of op relative to the plan root.
func (p *OperationPlan) Relative(op Operation) string {
	rel, err := filepath.Rel(p.Root, op.Destination)
	if err != nil {
		return op.Destination
	}
	return rel
}

// Counts tallies operations per action.
func (p *OperationPlan) Counts() map[Action]int {
	counts := make(map[Action]int, 3)
	if p == nil {
		return counts
	}
	for _, op := range p.Operations {
		counts[op.Action]++
	}
	return counts
}

// Placement asks for source to be placed in Dir (relative to the root, may be
// nested) under the name Stem plus the source extension.
type Placement struct {
	Source string
	Dir    string
	Stem   string
}
