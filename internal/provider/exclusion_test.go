package provider

import (
	"fmt"
	"sync"
	"testing"
)

func TestExclusionSet(t *testing.T) {
	s := NewExclusionSet()
	if s.Contains("a") || s.Len() != 0 {
		t.Fatal("new set should be empty")
	}
	s.Add("b")
	s.Add("a")
	s.Add("a")
	if !s.Contains("a") || s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got := s.Snapshot(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Snapshot = %v", got)
	}
	s.Clear()
	s.Clear()
	if s.Len() != 0 || s.Contains("a") {
		t.Error("Clear did not empty the set")
	}
}

func TestExclusionSet_Concurrent(t *testing.T) {
	s := NewExclusionSet()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("m%d", i%5)
			s.Add(name)
			_ = s.Contains(name)
			if i%10 == 0 {
				s.Clear()
			}
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	if s.Len() > 5 {
		t.Errorf("Len = %d, want at most 5", s.Len())
	}
}
