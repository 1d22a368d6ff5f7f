package idhash

import "testing"

func TestFindingID_Deterministic(t *testing.T) {
	a := FindingID("price_outlier", "ORG-1", "rec-42")
	b := FindingID("price_outlier", "ORG-1", "rec-42")
	if a != b {
		t.Errorf("expected identical IDs, got %s and %s", a, b)
	}
}

func TestFindingID_DistinguishesParts(t *testing.T) {
	a := FindingID("price_outlier", "ORG-1", "rec-42")
	b := FindingID("price_outlier", "ORG-1", "rec-43")
	if a == b {
		t.Errorf("expected distinct IDs for distinct parts, both %s", a)
	}

	// Kind participates in the hash too
	c := FindingID("temporal_burst", "ORG-1", "rec-42")
	if a == c {
		t.Errorf("expected distinct IDs for distinct kinds, both %s", a)
	}
}

func TestFindingID_Shape(t *testing.T) {
	id := FindingID("price_outlier", "ORG-1")
	// 16 hash bytes encode to 21-22 base58 characters
	if len(id) < 20 || len(id) > 23 {
		t.Errorf("unexpected ID length %d: %s", len(id), id)
	}
}
