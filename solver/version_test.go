package solver

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestSelectPicksMaxSatisfying(t *testing.T) {
	c, err := semver.NewConstraint("^0.6.0")
	if err != nil {
		t.Fatalf("constraint: %v", err)
	}
	index := ReleaseIndex{
		"0.6.0":  "v0.6.0+commit.1",
		"0.6.12": "v0.6.12+commit.27d51765",
		"0.7.0":  "v0.7.0+commit.2",
	}
	got, err := Select(c, index, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got != "0.6.12+commit.27d51765" {
		t.Fatalf("got %q, want the max satisfying 0.6.x release, normalized without its leading v", got)
	}
}

func TestSelectPinDominatesConstraint(t *testing.T) {
	c, err := semver.NewConstraint("^9.9.9") // unsatisfiable by the index
	if err != nil {
		t.Fatalf("constraint: %v", err)
	}
	index := ReleaseIndex{"0.6.12": "v0.6.12+commit.27d51765"}
	got, err := Select(c, index, "v0.6.12+commit.27d51765")
	if err != nil {
		t.Fatalf("Select with pin should not fail even though constraint is unsatisfiable: %v", err)
	}
	if got != "0.6.12+commit.27d51765" {
		t.Fatalf("got %q, want the pin verbatim with any leading v stripped", got)
	}
}

func TestSelectUnsatisfiable(t *testing.T) {
	c, err := semver.NewConstraint("^9.9.9")
	if err != nil {
		t.Fatalf("constraint: %v", err)
	}
	index := ReleaseIndex{"0.6.12": "v0.6.12+commit.27d51765"}
	if _, err := Select(c, index, ""); err == nil {
		t.Fatalf("expected UnsatisfiableVersionError")
	}
}
