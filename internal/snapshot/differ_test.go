package snapshot

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	prev := Keys("10.0.0.5:5000", "192.168.1.10:4000")
	cur := Keys("10.0.0.5:5000", "172.16.0.2:6000")

	joined, left := Diff(prev, cur)

	if !reflect.DeepEqual(joined, []string{"172.16.0.2:6000"}) {
		t.Errorf("Expected joined [172.16.0.2:6000], got %v", joined)
	}
	if !reflect.DeepEqual(left, []string{"192.168.1.10:4000"}) {
		t.Errorf("Expected left [192.168.1.10:4000], got %v", left)
	}
}

func TestDiffIdenticalSets(t *testing.T) {
	prev := Keys("10.0.0.5:5000")
	cur := Keys("10.0.0.5:5000")

	joined, left := Diff(prev, cur)

	if len(joined) != 0 || len(left) != 0 {
		t.Errorf("Expected no transitions for identical sets, got joined=%v left=%v", joined, left)
	}
}

func TestDiffEmptyPrevious(t *testing.T) {
	joined, left := Diff(KeySet{}, Keys("b:2", "a:1"))

	if !reflect.DeepEqual(joined, []string{"a:1", "b:2"}) {
		t.Errorf("Expected sorted joined keys, got %v", joined)
	}
	if len(left) != 0 {
		t.Errorf("Expected no left keys, got %v", left)
	}
}

func TestDiffEmptyCurrent(t *testing.T) {
	joined, left := Diff(Keys("a:1", "b:2"), KeySet{})

	if len(joined) != 0 {
		t.Errorf("Expected no joined keys, got %v", joined)
	}
	if !reflect.DeepEqual(left, []string{"a:1", "b:2"}) {
		t.Errorf("Expected sorted left keys, got %v", left)
	}
}
