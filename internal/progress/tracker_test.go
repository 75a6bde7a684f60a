package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minseo-dev/worklight/internal/models"
)

func newMarketingTracker(t *testing.T) *Tracker {
	t.Helper()
	cfg := DefaultConfig()
	steps := cfg.StepsFor("marketing")
	if len(steps) != 3 {
		t.Fatalf("expected 3 marketing steps, got %d", len(steps))
	}
	return NewTracker(steps)
}

func TestTrackerScenario(t *testing.T) {
	tr := newMarketingTracker(t)

	// Step 1 completed, step 2 active: 1/3 done, not complete.
	if !tr.Advance("search", StatusCompleted) {
		t.Fatal("advancing search to completed should succeed")
	}
	if !tr.Advance("keyword-trends", StatusActive) {
		t.Fatal("advancing keyword-trends to active should succeed")
	}
	if got := tr.Fraction(); got != 1.0/3.0 {
		t.Errorf("expected fraction 1/3, got %v", got)
	}
	if tr.Done() {
		t.Error("tracker should not be done yet")
	}

	// Remaining steps reach terminal states: 1.0, done, degraded.
	tr.Advance("keyword-trends", StatusCompleted)
	tr.Advance("hashtag-lookup", StatusError)
	if got := tr.Fraction(); got != 1.0 {
		t.Errorf("expected fraction 1.0, got %v", got)
	}
	if !tr.Done() {
		t.Error("tracker should be done once all steps are terminal")
	}
	if !tr.Degraded() {
		t.Error("an error step should mark the run degraded")
	}
}

func TestAdvanceUnknownServiceIsNoOp(t *testing.T) {
	tr := newMarketingTracker(t)
	tr.Advance("search", StatusCompleted)
	before := tr.Fraction()

	if tr.Advance("nonexistent-service", StatusCompleted) {
		t.Error("unknown service should not advance")
	}
	if tr.Fraction() != before {
		t.Errorf("fraction changed after unknown-service advance: %v -> %v", before, tr.Fraction())
	}
	for _, s := range tr.Steps() {
		if s.ServiceID == "nonexistent-service" {
			t.Error("tracker invented a step")
		}
	}
}

func TestStepsNeverMoveBackward(t *testing.T) {
	tr := newMarketingTracker(t)
	tr.Advance("search", StatusCompleted)

	if tr.Advance("search", StatusActive) {
		t.Error("completed step must not go back to active")
	}
	if tr.Advance("search", StatusPending) {
		t.Error("completed step must not go back to pending")
	}
	if tr.Steps()[0].Status != StatusCompleted {
		t.Errorf("step status changed to %s", tr.Steps()[0].Status)
	}
}

func TestAtMostOneActive(t *testing.T) {
	tr := newMarketingTracker(t)
	tr.Advance("search", StatusActive)

	if tr.Advance("keyword-trends", StatusActive) {
		t.Error("second active step should be rejected while one is active")
	}

	tr.Advance("search", StatusCompleted)
	if !tr.Advance("keyword-trends", StatusActive) {
		t.Error("step should go active once the previous one finished")
	}

	active := 0
	for _, s := range tr.Steps() {
		if s.Status == StatusActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active step, got %d", active)
	}
}

func TestFractionMonotonic(t *testing.T) {
	tr := newMarketingTracker(t)
	last := tr.Fraction()

	moves := []struct {
		service string
		status  Status
	}{
		{"search", StatusActive},
		{"search", StatusCompleted},
		{"hashtag-lookup", StatusActive}, // out of declared order: allowed
		{"hashtag-lookup", StatusError},
		{"keyword-trends", StatusCompleted},
	}
	for _, m := range moves {
		tr.Advance(m.service, m.status)
		if f := tr.Fraction(); f < last {
			t.Fatalf("fraction decreased from %v to %v after %s->%s", last, f, m.service, m.status)
		} else {
			last = f
		}
	}
	if last != 1.0 {
		t.Errorf("expected final fraction 1.0, got %v", last)
	}
}

func TestApplyPollUpdates(t *testing.T) {
	tr := newMarketingTracker(t)
	tr.Apply([]models.StepUpdate{
		{ServiceID: "search", Status: "completed"},
		{ServiceID: "keyword-trends", Status: "active"},
		{ServiceID: "made-up", Status: "completed"},
	})
	steps := tr.Steps()
	if steps[0].Status != StatusCompleted || steps[1].Status != StatusActive {
		t.Errorf("apply did not fold updates: %v", steps)
	}
	if tr.Len() != 3 {
		t.Errorf("expected 3 steps after apply, got %d", tr.Len())
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Agents: map[string][]StepSpec{
		"bad": {{ServiceID: "x"}, {ServiceID: "x"}},
	}}
	if err := cfg.Validate(); err == nil {
		t.Error("duplicate service_id should fail validation")
	}

	cfg = &Config{Agents: map[string][]StepSpec{"empty": {}}}
	if err := cfg.Validate(); err == nil {
		t.Error("empty step list should fail validation")
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing file falls back to defaults.
	cfg, err := LoadConfig(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if len(cfg.StepsFor("marketing")) == 0 {
		t.Error("default config should have marketing steps")
	}

	// A custom file overrides.
	path := filepath.Join(tmpDir, "agents.yaml")
	body := `agents:
  custom:
    - service_id: crm-lookup
      label: CRM lookup
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	steps := cfg.StepsFor("custom")
	if len(steps) != 1 || steps[0].ServiceID != "crm-lookup" {
		t.Errorf("unexpected custom steps: %v", steps)
	}
}

func TestStepsForUnknownAgentFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	steps := cfg.StepsFor("never-heard-of-it")
	if len(steps) == 0 {
		t.Fatal("unknown agent type should fall back to the general list")
	}
	if steps[0].ServiceID != "search" {
		t.Errorf("expected general search step, got %s", steps[0].ServiceID)
	}
}

func TestNewTrackerBuildsOrderedPendingSteps(t *testing.T) {
	tr := NewTracker([]StepSpec{
		{ServiceID: "search", Label: "Search"},
		{ServiceID: "keyword-trends", Label: "Trends"},
		{ServiceID: "search", Label: "Duplicate"},
	})

	steps := tr.Steps()
	if len(steps) != 2 {
		t.Fatalf("duplicate service IDs should collapse: got %d steps", len(steps))
	}
	for i, step := range steps {
		if step.Order != i+1 {
			t.Errorf("step %s order = %d, want %d", step.ServiceID, step.Order, i+1)
		}
		if step.Status != StatusPending {
			t.Errorf("step %s should start pending, got %s", step.ServiceID, step.Status)
		}
	}
	if steps[0].Label != "Search" {
		t.Errorf("first staged spec should win for a duplicate ID, got %q", steps[0].Label)
	}
	if tr.Fraction() != 0 {
		t.Errorf("fresh tracker Fraction = %v, want 0", tr.Fraction())
	}
}

func TestStepsForNeverReturnsEmpty(t *testing.T) {
	// A user config that names agents but carries no general list.
	cfg := &Config{Agents: map[string][]StepSpec{
		"marketing": {{ServiceID: "search", Label: "Search"}},
	}}

	steps := cfg.StepsFor("unknown-agent")
	if len(steps) == 0 {
		t.Fatal("unknown agent type should fall back to compiled-in steps")
	}

	tr := NewTracker(steps)
	if tr.Done() {
		t.Error("a tracker for a fresh run must not report done")
	}
	if tr.Fraction() != 0 {
		t.Errorf("fresh Fraction = %v, want 0", tr.Fraction())
	}
}
