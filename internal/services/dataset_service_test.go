package services

import (
	"strings"
	"testing"
)

func TestDatasetCreate_DefaultsLabelsAndBinarizes(t *testing.T) {
	store := newStubStore()
	svc := NewDatasetService(store)
	d, err := svc.Create("T1", DatasetInput{Name: " quiz ", Responses: [][]float64{{1, 0.7}, {0.2, 0}}})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if d.Name != "quiz" {
		t.Fatalf("expected trimmed name, got %q", d.Name)
	}
	if strings.Join(d.PersonLabels, ",") != "P1,P2" || strings.Join(d.ItemLabels, ",") != "I1,I2" {
		t.Fatalf("unexpected labels: %v %v", d.PersonLabels, d.ItemLabels)
	}
	if d.Responses[0][1] != 1 || d.Responses[1][0] != 0 {
		t.Fatalf("responses not binarized: %v", d.Responses)
	}
	got, err := svc.Get("T1", d.ID)
	if err != nil || got.ID != d.ID {
		t.Fatalf("Get: %v %v", got, err)
	}
}

func TestDatasetCreate_Validation(t *testing.T) {
	svc := NewDatasetService(newStubStore())
	cases := []struct {
		name string
		in   DatasetInput
	}{
		{"missing name", DatasetInput{Responses: [][]float64{{1}}}},
		{"ragged", DatasetInput{Name: "x", Responses: [][]float64{{1, 0}, {1}}}},
		{"label mismatch", DatasetInput{Name: "x", ItemLabels: []string{"a"}, Responses: [][]float64{{1, 0}}}},
	}
	for _, tc := range cases {
		_, err := svc.Create("T1", tc.in)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorInvalid {
			t.Fatalf("%s: expected invalid error, got %v", tc.name, err)
		}
	}
	if _, err := svc.Create("", DatasetInput{Name: "x"}); err == nil {
		t.Fatalf("expected unauthorized without tenant")
	}
}

func TestDatasetCreate_EmptyMatrixAllowed(t *testing.T) {
	svc := NewDatasetService(newStubStore())
	d, err := svc.Create("T1", DatasetInput{Name: "blank", PersonLabels: []string{"a"}, Responses: [][]float64{{}}})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(d.PersonLabels) != 0 || len(d.ItemLabels) != 0 || len(d.Responses) != 0 {
		t.Fatalf("expected empty dataset, got %+v", d)
	}
}

func TestDatasetCreateFromCSV(t *testing.T) {
	svc := NewDatasetService(newStubStore())
	body := "Student;Q1;Q2\nAnna;1;да\nBoris;0;\n"
	d, err := svc.CreateFromCSV("T1", "upload", strings.NewReader(body))
	if err != nil {
		t.Fatalf("CreateFromCSV error: %v", err)
	}
	if strings.Join(d.ItemLabels, ",") != "Q1,Q2" || strings.Join(d.PersonLabels, ",") != "Anna,Boris" {
		t.Fatalf("unexpected labels: %v %v", d.PersonLabels, d.ItemLabels)
	}
	if d.Responses[0][1] != 1 || d.Responses[1][1] != 0 {
		t.Fatalf("unexpected responses: %v", d.Responses)
	}
}

func TestDatasetTenantScoping(t *testing.T) {
	svc := NewDatasetService(newStubStore())
	d, err := svc.Create("T1", DatasetInput{Name: "x", Responses: [][]float64{{1}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get("T2", d.ID); err == nil {
		t.Fatalf("expected forbidden for foreign tenant")
	} else if se, _ := AsServiceError(err); se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete("T2", d.ID); err == nil {
		t.Fatalf("foreign tenant must not delete")
	}
	list, _ := svc.List("T2")
	if len(list) != 0 {
		t.Fatalf("foreign tenant sees %d datasets", len(list))
	}
	if err := svc.Delete("T1", d.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.Get("T1", d.ID); err == nil {
		t.Fatalf("expected not found after delete")
	}
}
