// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

// Resolve looks up a command by group and command name. A miss is not an
// error; the dispatcher falls through to help rendering.
func (r *Registry) Resolve(group, command string) (*Command, bool) {
	cmds, ok := r.groups[group]
	if !ok {
		return nil, false
	}
	c, ok := cmds[command]
	return c, ok
}

// Suggestion is a nearest-by-edit-distance command recommendation.
type Suggestion struct {
	Group    string
	Command  string
	Distance int
}

// Path returns the user-facing command path ("group command" or "command").
func (s Suggestion) Path() string {
	if s.Group == "" {
		return s.Command
	}
	return s.Group + " " + s.Command
}

// Suggest ranks every command name across every group by edit distance to
// the search token and returns the closest. Groups and commands are
// enumerated alphabetically with strict improvement only, so ties break to
// the alphabetically first candidate.
func (r *Registry) Suggest(token string) (Suggestion, bool) {
	if token == "" {
		return Suggestion{}, false
	}
	best := Suggestion{Distance: -1}
	for _, group := range sortedKeys(r.groups) {
		for _, name := range sortedKeys(r.groups[group]) {
			d := levenshtein(token, name)
			if best.Distance < 0 || d < best.Distance {
				best = Suggestion{Group: group, Command: name, Distance: d}
			}
		}
	}
	return best, best.Distance >= 0
}

// levenshtein computes the edit distance between two strings using a single
// row of the distance matrix, O(min(m,n)) space.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(b); j++ {
		prev := row[0] // row[i-1] of the previous iteration
		row[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur := min(row[i]+1, min(row[i-1]+1, prev+cost))
			prev = row[i]
			row[i] = cur
		}
	}
	return row[len(a)]
}
