package service_test

import (
	"context"
	"errors"
	"testing"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/service"
)

func TestDisciplineCreateNormalizesCodeAndStampsTestIDs(t *testing.T) {
	svc := service.NewDisciplineService(newFakeDisciplineRepo(), logger.NewNop())

	created, err := svc.Create(context.Background(), domain.Discipline{
		Code:      "  CrossFit ",
		Name:      "CrossFit",
		BasePrice: 149,
		DefaultDiagnostics: []domain.DiagnosticTest{
			{Title: "Injury History", InputType: domain.InputText, Required: true},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Code != "crossfit" {
		t.Errorf("code = %q, want normalized %q", created.Code, "crossfit")
	}
	if created.DefaultDiagnostics[0].ID == "" {
		t.Error("diagnostic test not given an id")
	}

	// Lookups work against the normalized code regardless of input casing.
	got, err := svc.Get(context.Background(), "CROSSFIT")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "CrossFit" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestDisciplineCreateValidation(t *testing.T) {
	svc := service.NewDisciplineService(newFakeDisciplineRepo(), logger.NewNop())

	cases := []struct {
		name string
		in   domain.Discipline
	}{
		{"missing code", domain.Discipline{Name: "X"}},
		{"missing name", domain.Discipline{Code: "x"}},
		{"negative price", domain.Discipline{Code: "x", Name: "X", BasePrice: -1}},
		{"bad input type", domain.Discipline{Code: "x", Name: "X", DefaultDiagnostics: []domain.DiagnosticTest{
			{Title: "T", InputType: "AUDIO"},
		}}},
		{"untitled test", domain.Discipline{Code: "x", Name: "X", DefaultDiagnostics: []domain.DiagnosticTest{
			{InputType: domain.InputText},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); err == nil {
				t.Errorf("Create(%+v) accepted invalid discipline", tc.in)
			}
		})
	}
}

func TestDisciplineUpdateUnknownCode(t *testing.T) {
	svc := service.NewDisciplineService(newFakeDisciplineRepo(), logger.NewNop())

	_, err := svc.Update(context.Background(), "nope", domain.Discipline{Code: "nope", Name: "Nope"})
	if !errors.Is(err, service.ErrDisciplineNotFound) {
		t.Fatalf("Update() error = %v, want ErrDisciplineNotFound", err)
	}
}
