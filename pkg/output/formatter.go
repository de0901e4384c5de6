package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/readiness"
	"github.com/ritzau/knowledge-graph/pkg/recommend"
)

var stateTitles = map[model.ReadinessState]string{
	model.StateStartHere:  "START HERE",
	model.StateUnlocked:   "UNLOCKED",
	model.StateInProgress: "IN PROGRESS",
	model.StateCompleted:  "COMPLETED",
	model.StateLocked:     "LOCKED",
}

var stateColors = map[model.ReadinessState]*color.Color{
	model.StateStartHere:  color.New(color.FgCyan, color.Bold),
	model.StateUnlocked:   color.New(color.FgBlue, color.Bold),
	model.StateInProgress: color.New(color.FgYellow, color.Bold),
	model.StateCompleted:  color.New(color.FgGreen, color.Bold),
	model.StateLocked:     color.New(color.FgHiBlack, color.Bold),
}

// PrintReadinessReport prints a colored readiness report for one topic
func PrintReadinessReport(w io.Writer, source string, res *engine.Result) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.FgHiBlack)

	// Header
	bold.Fprintln(w, "Knowledge Graph - Readiness Report")
	bold.Fprintln(w, "==================================")
	if res.Topic != "" {
		fmt.Fprintf(w, "Topic: %s\n", res.Topic)
	}
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Concepts: %d (%d prerequisite edges)\n", len(res.Nodes), len(res.Edges))
	fmt.Fprintln(w)

	if res.Empty() {
		yellow.Fprintln(w, "No concepts in this topic yet.")
		return
	}

	// Per-state listing, shallowest first
	for _, state := range model.AllStates {
		nodes := nodesIn(res, state)
		if len(nodes) == 0 {
			continue
		}
		stateColors[state].Fprintf(w, "%s (%d):\n", stateTitles[state], len(nodes))
		for _, n := range nodes {
			fmt.Fprintf(w, "  %s", n.Record.Name)
			faint.Fprintf(w, " [%s] depth %d, difficulty %d, %s\n",
				n.ID(), n.Depth, n.Record.Difficulty, n.Record.Mastery.Label())
			if state == model.StateLocked {
				if missing := missingPrerequisites(res, n); len(missing) > 0 {
					cyan.Fprintf(w, "    Needs: %s\n", strings.Join(missing, ", "))
				}
			}
		}
		fmt.Fprintln(w)
	}

	if len(res.Cycles) > 0 {
		red.Fprintf(w, "PREREQUISITE CYCLES (%d):\n", len(res.Cycles))
		for _, c := range res.Cycles {
			yellow.Fprintf(w, "  %s\n", strings.Join(c.Concepts, " <-> "))
		}
		fmt.Fprintln(w)
	}
	if res.Dropped > 0 {
		yellow.Fprintf(w, "Ignored %d edge(s) referencing unknown concepts\n\n", res.Dropped)
	}

	if n, ok := res.SuggestedNode(); ok {
		bold.Fprintf(w, "%s: ", recommend.Hint(n.State))
		cyan.Fprintf(w, "%s\n", n.Record.Name)
	}

	// Summary with color based on progress
	s := res.Summary
	summaryColor := green
	if s.Percent < 100.0 {
		summaryColor = yellow
	}
	if s.Percent < 25.0 {
		summaryColor = red
	}
	summaryColor.Fprintf(w, "Summary: %.0f%% mastered (%d/%d concepts)\n", s.Percent, s.Mastered, s.Total)

	if s.Mastered == s.Total {
		green.Fprintln(w, "✓ Every concept in this topic is mastered!")
	}
}

func nodesIn(res *engine.Result, state model.ReadinessState) []*engine.LayoutNode {
	var nodes []*engine.LayoutNode
	for i := range res.Nodes {
		if res.Nodes[i].State == state {
			nodes = append(nodes, &res.Nodes[i])
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Depth < nodes[j].Depth
	})
	return nodes
}

// missingPrerequisites names the direct prerequisites still holding n locked
func missingPrerequisites(res *engine.Result, n *engine.LayoutNode) []string {
	var missing []string
	for _, id := range n.Prerequisites.Sorted() {
		p, ok := res.Node(id)
		if !ok || readiness.Unlocks(p.Record.Mastery) {
			continue
		}
		missing = append(missing, p.Record.Name)
	}
	return missing
}
