package models

import (
	"errors"
	"testing"
)

func TestLeadValidate(t *testing.T) {
	tests := []struct {
		name    string
		lead    Lead
		wantErr error
	}{
		{
			name:    "valid lead with phone",
			lead:    Lead{Name: "Dana Whitfield", Phone: "+15551234567", Status: LeadStatusNew},
			wantErr: nil,
		},
		{
			name:    "valid lead with email only",
			lead:    Lead{Name: "Dana Whitfield", Email: "dana@example.com"},
			wantErr: nil,
		},
		{
			name:    "missing name",
			lead:    Lead{Phone: "+15551234567"},
			wantErr: ErrEmptyLeadName,
		},
		{
			name:    "missing contact entirely",
			lead:    Lead{Name: "Dana Whitfield"},
			wantErr: ErrEmptyLeadContact,
		},
		{
			name:    "unknown status",
			lead:    Lead{Name: "Dana Whitfield", Phone: "+15551234567", Status: "archived"},
			wantErr: ErrUnknownLeadStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lead.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidLeadStatus(t *testing.T) {
	for _, s := range []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusWon, LeadStatusLost} {
		if !IsValidLeadStatus(s) {
			t.Errorf("IsValidLeadStatus(%q) = false, want true", s)
		}
	}
	if IsValidLeadStatus("archived") {
		t.Error("IsValidLeadStatus(\"archived\") = true, want false")
	}
	if IsValidLeadStatus("") {
		t.Error("IsValidLeadStatus(\"\") = true, want false")
	}
}

func TestParseDesignStyle(t *testing.T) {
	tests := []struct {
		input  string
		want   DesignStyle
		wantOK bool
	}{
		{"modern", StyleModern, true},
		{"Modern", StyleModern, true},
		{"  FARMHOUSE  ", StyleFarmhouse, true},
		{"contemporary", StyleContemporary, true},
		{"mid-century", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDesignStyle(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseDesignStyle(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestQuestionStateFor(t *testing.T) {
	tests := []struct {
		project ProjectType
		want    QuoteState
	}{
		{ProjectTypeKitchen, QuoteStateKitchenQuestions},
		{ProjectTypeBathroom, QuoteStateBathroomQuestions},
		{ProjectTypeBasement, QuoteStateBasementQuestions},
		{ProjectTypeFlooring, QuoteStateFlooringQuestions},
		{ProjectTypeOther, QuoteStateOtherQuestions},
		{ProjectType("sunroom"), QuoteStateOtherQuestions},
	}

	for _, tt := range tests {
		if got := QuestionStateFor(tt.project); got != tt.want {
			t.Errorf("QuestionStateFor(%q) = %q, want %q", tt.project, got, tt.want)
		}
	}
}

func TestDeltaIsEmpty(t *testing.T) {
	if !(QuoteDataDelta{}).IsEmpty() {
		t.Error("zero QuoteDataDelta should be empty")
	}
	if (QuoteDataDelta{Timeline: "this fall"}).IsEmpty() {
		t.Error("QuoteDataDelta with timeline should not be empty")
	}
	if !(DesignIntentDelta{}).IsEmpty() {
		t.Error("zero DesignIntentDelta should be empty")
	}
	if (DesignIntentDelta{DesiredChanges: []string{"open shelving"}}).IsEmpty() {
		t.Error("DesignIntentDelta with changes should not be empty")
	}
}
