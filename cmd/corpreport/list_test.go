package main

import (
	"strings"
	"testing"

	"github.com/nao1215/corpreport/internal/analysis"
)

func TestListCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeCLI(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range analysis.Names() {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected %s in list output:\n%s", name, stdout)
		}
	}
	for _, want := range []string{"companies", "people", "Job_Title"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in list output:\n%s", want, stdout)
		}
	}

	t.Run("rejects arguments", func(t *testing.T) {
		t.Parallel()
		if _, _, err := executeCLI(t, "list", "extra"); err == nil {
			t.Error("expected error for extra argument")
		}
	})
}
