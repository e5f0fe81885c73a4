package validate

import (
	"encoding/json"
	"testing"
)

func TestPath_String(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{nil, "(root)"},
		{Path{}, "(root)"},
		{Path{KeyStep("team")}, "team"},
		{Path{KeyStep("batches"), IndexStep(2)}, "batches[2]"},
		{Path{KeyStep("batches"), IndexStep(2), KeyStep("interval")}, "batches[2].interval"},
		{Path{IndexStep(0), KeyStep("a")}, "[0].a"},
	}
	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestPath_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Path
		want int
	}{
		{"key order", Path{KeyStep("a")}, Path{KeyStep("b")}, -1},
		{"prefix first", Path{KeyStep("a")}, Path{KeyStep("a"), KeyStep("b")}, -1},
		{"key before index", Path{KeyStep("a"), KeyStep("z")}, Path{KeyStep("a"), IndexStep(0)}, -1},
		{"index order", Path{IndexStep(1)}, Path{IndexStep(2)}, -1},
		{"equal", Path{KeyStep("a"), IndexStep(3)}, Path{KeyStep("a"), IndexStep(3)}, 0},
		{"root before everything", Path{}, Path{KeyStep("a")}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Errorf("Expected the reverse comparison to yield %d, got %d", -tt.want, got)
			}
		})
	}
}

func TestPath_KeyAndIndexDoNotAlias(t *testing.T) {
	base := Path{KeyStep("clusters")}
	left := base.Key("norcal-prod")
	right := base.Key("nova-prod")

	if left.String() != "clusters.norcal-prod" {
		t.Errorf("Expected clusters.norcal-prod, got %s", left)
	}
	if right.String() != "clusters.nova-prod" {
		t.Errorf("Expected clusters.nova-prod, got %s", right)
	}
}

func TestReport_SortOrder(t *testing.T) {
	report := Report{
		{Path: Path{KeyStep("b")}, Kind: KindBoundViolation},
		{Path: Path{KeyStep("a"), IndexStep(0)}, Kind: KindTypeMismatch},
		{Path: Path{KeyStep("a"), KeyStep("z")}, Kind: KindEnumViolation},
		{Path: Path{KeyStep("a")}, Kind: KindArityViolation},
		{Path: Path{KeyStep("b")}, Kind: KindMissingRequired},
	}
	sortReport(report)

	wantPaths := []string{"a", "a.z", "a[0]", "b", "b"}
	for i, want := range wantPaths {
		if got := report[i].Path.String(); got != want {
			t.Fatalf("position %d: expected %s, got %s (report %v)", i, want, got, report)
		}
	}
	if report[3].Kind != KindMissingRequired || report[4].Kind != KindBoundViolation {
		t.Errorf("Expected kind priority to order equal paths, got %s then %s",
			report[3].Kind, report[4].Kind)
	}
}

func TestViolation_MarshalJSON(t *testing.T) {
	v := Violation{
		Path:    Path{KeyStep("alerting"), KeyStep("page")},
		Kind:    KindUnexpectedProperty,
		Message: `property "page" is not allowed`,
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := `{"path":"alerting.page","kind":"unexpected_property","message":"property \"page\" is not allowed"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestReport_String(t *testing.T) {
	report := Report{
		{Path: Path{KeyStep("page")}, Kind: KindUnexpectedProperty, Message: `property "page" is not allowed`},
		{Path: Path{KeyStep("setpoint")}, Kind: KindBoundViolation, Message: "value 1.01 is above the maximum 1", Expected: "<= 1"},
	}
	want := "page: property \"page\" is not allowed\n" +
		"setpoint: value 1.01 is above the maximum 1 (expected <= 1)\n"
	if got := report.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReport_Counts(t *testing.T) {
	if counts := (Report{}).Counts(); len(counts) != 0 {
		t.Errorf("Expected no counts for an empty report, got %v", counts)
	}

	report := Report{
		{Kind: KindBoundViolation},
		{Kind: KindBoundViolation},
		{Kind: KindEnumViolation},
	}
	counts := report.Counts()
	if counts[KindBoundViolation] != 2 || counts[KindEnumViolation] != 1 {
		t.Errorf("Expected 2 bound and 1 enum, got %v", counts)
	}

	if !(Report{}).Valid() {
		t.Error("Expected an empty report to be valid")
	}
	if report.Valid() {
		t.Error("Expected a non-empty report to be invalid")
	}
}
