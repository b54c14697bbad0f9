package report

import "time"

// Delta is the change of one item's interaction count between two snapshots.
// An item missing from one side counts as 0 there.
type Delta struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Before int    `json:"before" yaml:"before"`
	After  int    `json:"after" yaml:"after"`
}

// Change is After minus Before.
func (d Delta) Change() int { return d.After - d.Before }

// Comparison holds the per-platform and per-content deltas from a baseline
// snapshot to the current one.
type Comparison struct {
	BaselineGeneratedAt time.Time `json:"baseline_generated_at" yaml:"baseline_generated_at"`
	BaselineRunID       string    `json:"baseline_run_id" yaml:"baseline_run_id"`
	Platforms           []Delta   `json:"platforms" yaml:"platforms"`
	Contents            []Delta   `json:"contents" yaml:"contents"`
}

// Compare matches platforms and contents by id. Items of current come first in
// their order, followed by items only present in baseline.
func Compare(baseline, current Snapshot) Comparison {
	return Comparison{
		BaselineGeneratedAt: baseline.GeneratedAt,
		BaselineRunID:       baseline.Ingestion.RunID,
		Platforms:           deltas(platformCounts(baseline.Platforms), platformCounts(current.Platforms)),
		Contents:            deltas(contentCounts(baseline.Contents), contentCounts(current.Contents)),
	}
}

type idCount struct {
	id    int
	name  string
	count int
}

func platformCounts(ps []PlatformSummary) []idCount {
	out := make([]idCount, len(ps))
	for i, p := range ps {
		out[i] = idCount{p.ID, p.Name, p.Interactions}
	}
	return out
}

func contentCounts(cs []ContentSummary) []idCount {
	out := make([]idCount, len(cs))
	for i, c := range cs {
		out[i] = idCount{c.ID, c.Name, c.Interactions}
	}
	return out
}

func deltas(before, after []idCount) []Delta {
	prev := make(map[int]int, len(before))
	for _, b := range before {
		prev[b.id] = b.count
	}

	out := make([]Delta, 0, len(after))
	seen := make(map[int]bool, len(after))
	for _, a := range after {
		seen[a.id] = true
		out = append(out, Delta{ID: a.id, Name: a.name, Before: prev[a.id], After: a.count})
	}
	for _, b := range before {
		if !seen[b.id] {
			out = append(out, Delta{ID: b.id, Name: b.name, Before: b.count})
		}
	}
	return out
}
