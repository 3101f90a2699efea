package search

import (
	"reflect"
	"testing"
	"time"

	"jobpilot/internal/domain/job"
)

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"  Senior   Go/Backend-Engineer ": "senior go backend engineer",
		"C++, C# and Node.js":             "c++ c# and node.js",
		"Data Scientist!!":                "data scientist",
		"":                                "",
	}
	for in, want := range tests {
		if got := NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandQuery(t *testing.T) {
	got := ExpandQuery("senior software engineer")
	want := []string{"senior software engineer", "software engineer", "software developer", "developer", "programmer"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandQuery = %v, want %v", got, want)
	}

	got = ExpandQuery("backend dubai")
	want = []string{"backend dubai", "back end dubai", "server developer dubai"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandQuery = %v, want %v", got, want)
	}

	if len(ExpandQuery("")) != 0 {
		t.Fatalf("expected no variants for an empty query")
	}
}

func TestRank(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	jobs := job.Samples()

	ranked := Rank(jobs, ParseQuery("data scientist", ""), now)
	if ranked[0].ExternalJobID != "job456" {
		t.Fatalf("expected the data science posting first, got %s", ranked[0].ExternalJobID)
	}

	ranked = Rank(jobs, ParseQuery("", "Abu Dhabi"), now)
	if ranked[0].ExternalJobID != "job456" {
		t.Fatalf("expected the Abu Dhabi posting first, got %s", ranked[0].ExternalJobID)
	}

	unchanged := Rank(jobs, ParseQuery("  ", ""), now)
	for i := range jobs {
		if unchanged[i].ExternalJobID != jobs[i].ExternalJobID {
			t.Fatalf("empty query must keep the input order")
		}
	}
}

func TestComputeLocation_UAE(t *testing.T) {
	if got := ComputeLocation(job.Job{Location: "Dubai"}, "uae"); got != 2 {
		t.Fatalf("expected emirate match, got %v", got)
	}
	if got := ComputeLocation(job.Job{Location: "London"}, "uae"); got != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}
