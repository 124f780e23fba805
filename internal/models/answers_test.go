package models

import (
	"database/sql"
	"testing"
)

func TestAnswersRoundTrip(t *testing.T) {
	in := Answers{
		3: {QuestionID: 3, QuestionText: "Вік дитини?", Answer: "2 роки", Number: 1},
		7: {QuestionID: 7, QuestionText: "Скарги?", Answer: SkippedAnswer, Number: 2},
	}
	raw, err := in.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := DecodeAnswers(raw)
	if len(out) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(out))
	}
	if out[3].Answer != "2 роки" || out[3].Number != 1 {
		t.Errorf("entry 3 = %+v", out[3])
	}
	if !out[7].Skipped() {
		t.Errorf("entry 7 should be marked skipped")
	}
}

func TestDecodeAnswersCorrupt(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2,3]", "null"} {
		got := DecodeAnswers([]byte(raw))
		if got == nil || len(got) != 0 {
			t.Errorf("DecodeAnswers(%q) = %v, want empty map", raw, got)
		}
	}
}

func TestAnswersOrdered(t *testing.T) {
	a := Answers{
		10: {QuestionID: 10, Number: 3},
		4:  {QuestionID: 4, Number: 1},
		9:  {QuestionID: 9, Number: 2},
	}
	ord := a.Ordered()
	if len(ord) != 3 {
		t.Fatalf("len = %d", len(ord))
	}
	for i, wantID := range []int64{4, 9, 10} {
		if ord[i].QuestionID != wantID {
			t.Errorf("ord[%d].QuestionID = %d, want %d", i, ord[i].QuestionID, wantID)
		}
	}
}

func TestAnswersCounts(t *testing.T) {
	a := Answers{
		1: {QuestionID: 1, Answer: "так", Number: 1},
		2: {QuestionID: 2, Answer: SkippedAnswer, Number: 2},
		3: {QuestionID: 3, Answer: "ні", Number: 3},
	}
	if got := a.Answered(); got != 2 {
		t.Errorf("Answered = %d, want 2", got)
	}
	if got := a.SkippedCount(); got != 1 {
		t.Errorf("SkippedCount = %d, want 1", got)
	}
}

func TestQuestionnaireAnswers(t *testing.T) {
	q := &Questionnaire{}
	if got := q.Answers(); len(got) != 0 {
		t.Errorf("null answers should decode empty, got %v", got)
	}
	q.RawAnswers = sql.NullString{String: `{"5":{"question_id":5,"question_text":"t","answer":"a","question_number":1}}`, Valid: true}
	got := q.Answers()
	if got[5].Answer != "a" {
		t.Errorf("got %+v", got)
	}
}

func TestUserHelpers(t *testing.T) {
	u := &User{}
	if u.HasPhone() {
		t.Error("empty user should not have phone")
	}
	if u.DisplayPhone() != PhoneNotProvided {
		t.Errorf("DisplayPhone = %q", u.DisplayPhone())
	}
	u.PhoneNumber = sql.NullString{String: PhoneNotProvided, Valid: true}
	if u.HasPhone() {
		t.Error("sentinel phone should not count as provided")
	}
	u.PhoneNumber = sql.NullString{String: "+380671234567", Valid: true}
	u.FormattedPhone = sql.NullString{String: "+38 (067) 123-45-67", Valid: true}
	if !u.HasPhone() {
		t.Error("real phone should count as provided")
	}
	if got := u.DisplayPhone(); got != "+38 (067) 123-45-67" {
		t.Errorf("DisplayPhone = %q", got)
	}
}
