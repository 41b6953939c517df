package runtime

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// formatAgg renders a tracked-outcome aggregate deterministically: labels
// sorted lexicographically, outcomes within a label sorted via OutcomeOrder.
func formatAgg(agg map[string]map[string]int) string {
	labels := make([]string, 0, len(agg))
	for label := range agg {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var sb strings.Builder
	for _, label := range labels {
		counts := agg[label]
		outcomes := make([]string, 0, len(counts))
		for o := range counts {
			outcomes = append(outcomes, o)
		}
		outcomes = OutcomeOrder(outcomes)
		fmt.Fprintf(&sb, "%s:\n", label)
		for _, o := range outcomes {
			fmt.Fprintf(&sb, "  %s -> %d\n", o, counts[o])
		}
	}
	return sb.String()
}

func TestSnapshotDeterministicBitFlipQASM(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  qubit q;
  x(q);
  bit b = measure q;
  echo(b);
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)

	snaps.MatchSnapshot(t, "echo_output", strings.TrimSpace(buf.String()))
	snaps.MatchSnapshot(t, "qasm_trace", ev.QASM())
}

func TestSnapshotDeterministicShotAggregate(t *testing.T) {
	prog, res := compile(t, `
@shots(16)
function main() -> void {
  @tracked qubit a;
  @tracked qubit b;
  x(a);
  cx(a, b);
  @tracked bit ra = measure a;
  @tracked bit rb = measure b;
}`)
	var buf bytes.Buffer
	agg, _, err := RunShots(prog, res.Registry, functionTable(prog), res.MainFunc, res.ShotCount, &buf, false)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	snaps.MatchSnapshot(t, "tracked_aggregate", formatAgg(agg))
}
