package models

import "testing"

func TestRunProgressString(t *testing.T) {
	withTotal := RunProgress{Extracted: 7, Accepted: 6, ExpectedTotal: 20}
	if got := withTotal.String(); got != "7/20 extracted, 6 accepted" {
		t.Errorf("String() = %q", got)
	}

	openEnded := RunProgress{Extracted: 7, Accepted: 6}
	if got := openEnded.String(); got != "7 extracted, 6 accepted" {
		t.Errorf("String() = %q", got)
	}
}

func TestJobTerminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobPending, false},
		{JobRunning, false},
		{JobCompleted, true},
		{JobFailed, true},
	}

	for _, tt := range tests {
		j := &Job{Status: tt.status}
		if got := j.Terminal(); got != tt.want {
			t.Errorf("Terminal() with %q = %v; want %v", tt.status, got, tt.want)
		}
	}
}
