package studyapi

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewValidator_TextbookExtension(t *testing.T) {
	v := newValidator()
	if err := v.Var("notes.PDF", "textbook_ext"); err != nil {
		t.Errorf("expected .PDF to pass, got %v", err)
	}
	if err := v.Var("diagram.png", "textbook_ext"); err == nil {
		t.Error("expected .png to be rejected")
	}
}

func TestMustRegister_PanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an empty tag")
		}
	}()
	mustRegister(validator.New(), "", func(validator.FieldLevel) bool { return true })
}
