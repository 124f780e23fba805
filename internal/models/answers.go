package models

import (
	"encoding/json"
	"sort"
)

// AnswerEntry is one recorded answer inside a questionnaire snapshot.
type AnswerEntry struct {
	QuestionID   int64  `json:"question_id"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
	Number       int    `json:"question_number"`
}

// Skipped reports whether this entry holds the skip marker instead of
// a real answer.
func (e AnswerEntry) Skipped() bool {
	return e.Answer == SkippedAnswer
}

// Answers maps a question id to the answer recorded for it during one run.
// The wire form keys entries by the decimal question id.
type Answers map[int64]AnswerEntry

// DecodeAnswers parses a stored answer mapping. Corrupt input yields an
// empty mapping so that old or damaged rows never break rendering.
func DecodeAnswers(raw []byte) Answers {
	if len(raw) == 0 {
		return Answers{}
	}
	var out Answers
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return Answers{}
	}
	return out
}

// Encode serializes the mapping for storage.
func (a Answers) Encode() ([]byte, error) {
	if a == nil {
		a = Answers{}
	}
	return json.Marshal(a)
}

// Ordered returns all entries sorted by the question number they were
// asked under.
func (a Answers) Ordered() []AnswerEntry {
	out := make([]AnswerEntry, 0, len(a))
	for _, e := range a {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Answered counts entries that carry a real answer.
func (a Answers) Answered() int {
	n := 0
	for _, e := range a {
		if !e.Skipped() {
			n++
		}
	}
	return n
}

// SkippedCount counts entries recorded with the skip marker.
func (a Answers) SkippedCount() int {
	return len(a) - a.Answered()
}
