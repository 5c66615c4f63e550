package scansrc

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestScanPragmaAndImports(t *testing.T) {
	src := `
// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

import "./Token.sol";
import {Ownable} from "@openzeppelin/contracts/access/Ownable.sol";
import * as Math from "./Math.sol";

/* block comment with import "./Fake.sol"; inside it */

contract Foo {}
`
	scanned, err := Scan(src)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if scanned.Family != "solidity" {
		t.Fatalf("expected family %q, got %q", "solidity", scanned.Family)
	}
	if scanned.Constraint == nil {
		t.Fatalf("expected a non-nil constraint")
	}
	if !scanned.Constraint.Check(mustVersion(t, "0.8.19")) {
		t.Fatalf("expected constraint to match 0.8.19")
	}
	if scanned.Constraint.Check(mustVersion(t, "0.7.6")) {
		t.Fatalf("expected constraint to reject 0.7.6")
	}

	wantImports := []string{"./Token.sol", "@openzeppelin/contracts/access/Ownable.sol", "./Math.sol"}
	if len(scanned.Imports) != len(wantImports) {
		t.Fatalf("got %d imports, want %d: %+v", len(scanned.Imports), len(wantImports), scanned.Imports)
	}
	got := make(map[string]bool)
	for _, imp := range scanned.Imports {
		got[imp.Path] = true
	}
	for _, w := range wantImports {
		if !got[w] {
			t.Errorf("expected import %q to be extracted, imports were: %+v", w, scanned.Imports)
		}
		if got["./Fake.sol"] {
			t.Errorf("import inside block comment must not be extracted")
		}
	}
}

func TestScanIntersectsMultiplePragmas(t *testing.T) {
	src := `
pragma solidity >=0.6.0;
pragma solidity <0.9.0;
`
	scanned, err := Scan(src)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !scanned.Constraint.Check(mustVersion(t, "0.8.0")) {
		t.Fatalf("expected intersection to match 0.8.0")
	}
	if scanned.Constraint.Check(mustVersion(t, "0.5.9")) {
		t.Fatalf("expected intersection to reject 0.5.9")
	}
	if scanned.Constraint.Check(mustVersion(t, "0.9.0")) {
		t.Fatalf("expected intersection to reject 0.9.0")
	}
}

func TestScanNoPragma(t *testing.T) {
	scanned, err := Scan(`contract Foo {}`)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if scanned.Constraint != nil {
		t.Fatalf("expected nil constraint when no pragma is present")
	}
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	if err != nil {
		t.Fatalf("invalid test version %q: %v", s, err)
	}
	return v
}
