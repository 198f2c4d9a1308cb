package core

import (
	"errors"
	"strings"
	"testing"
)

func TestStructuralErrorClassification(t *testing.T) {
	err := NewUnknownProjectError(ID("rec-1"), "ProjectZ")

	if !IsStructuralError(err) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if !errors.Is(err, ErrUnknownProject) {
		t.Errorf("expected ErrUnknownProject in chain")
	}
	if errors.Is(err, ErrUnknownCriterion) {
		t.Errorf("did not expect ErrUnknownCriterion in chain")
	}

	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructuralError")
	}
	if se.Field != "projects" || se.Value != "ProjectZ" {
		t.Errorf("unexpected field/value: %s/%v", se.Field, se.Value)
	}
	if !strings.Contains(err.Error(), "rec-1") {
		t.Errorf("message should name the record: %s", err.Error())
	}
}

func TestIndexErrorClassification(t *testing.T) {
	err := NewFrozenSpaceError("project", "Late")

	if !IsIndexError(err) {
		t.Fatalf("expected index error")
	}
	if IsStructuralError(err) {
		t.Errorf("index error must not classify as structural")
	}
	if !strings.Contains(err.Error(), "Late") {
		t.Errorf("message should name the offending value: %s", err.Error())
	}
}

func TestHashBuilderSensitivity(t *testing.T) {
	a := NewHashBuilder().String("x").Floats([]float64{1, -1}).Float(0.01).Bool(false).Sum()
	b := NewHashBuilder().String("x").Floats([]float64{1, -1}).Float(0.01).Bool(false).Sum()
	c := NewHashBuilder().String("x").Floats([]float64{1, -1}).Float(0.01).Bool(true).Sum()

	if !a.Equals(b) {
		t.Errorf("identical input must hash equal")
	}
	if a.Equals(c) {
		t.Errorf("differing input must hash differently")
	}
	if a.IsEmpty() {
		t.Errorf("hash must not be empty")
	}
}
