package provider

import (
	"context"
	"testing"
)

func TestProbe(t *testing.T) {
	gen := newFake(map[string]error{
		"quota":   errQuota,
		"missing": &statusErr{code: 404, msg: "models/missing is not found for API version v1beta"},
		"broken":  errServer,
		"badkey":  errCredential,
	})
	inv := NewInvoker(gen, candidates("quota", "missing", "ok", "broken", "badkey"), Options{})

	statuses, err := inv.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	want := map[string]string{
		"quota":   StatusQuotaExceeded,
		"missing": StatusNotAvailable,
		"ok":      StatusAvailable,
		"broken":  StatusError,
		"badkey":  StatusError,
	}
	if len(statuses) != len(want) {
		t.Fatalf("got %d statuses", len(statuses))
	}
	for i, st := range statuses {
		if st.Name != inv.Candidates()[i].Name {
			t.Errorf("statuses[%d] = %s, want priority order", i, st.Name)
		}
		if st.Status != want[st.Name] {
			t.Errorf("%s: status = %q, want %q", st.Name, st.Status, want[st.Name])
		}
		if st.IsDefault != (st.Name == "ok") {
			t.Errorf("%s: IsDefault = %v", st.Name, st.IsDefault)
		}
	}
	if statuses[1].Error != msgNotAvailable {
		t.Errorf("missing error = %q", statuses[1].Error)
	}
	for _, st := range statuses {
		if st.Name == "badkey" && st.Error != msgProbeCredential {
			t.Errorf("credential failure leaked upstream text: %q", st.Error)
		}
	}
	if inv.Exclusions().Len() != 0 {
		t.Errorf("probe mutated exclusions: %v", inv.Exclusions().Snapshot())
	}
	if len(gen.Calls()) != 5 {
		t.Errorf("calls = %v, want one per candidate", gen.Calls())
	}
}
