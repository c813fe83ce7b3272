package training

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mafunzo/core"
)

func TestValidDuration(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10 minutes", true},
		{"1 minute", true},
		{"5 seconds", true},
		{"1 second", true},
		{"2 hours", true},
		{"1 hour", true},
		{"120 minutes", true},
		{"5 fortnights", false},
		{"0 minutes", false},
		{"-5 minutes", false},
		{"5minutes", false},
		{"5  minutes", false},
		{"minutes", false},
		{"5 Minutes", false},
		{"five minutes", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidDuration(tt.in))
		})
	}
}

func TestModule_CheckAnswer(t *testing.T) {
	mod := Module{Answer: "Structured Query Language"}

	tests := []struct {
		answer string
		want   bool
	}{
		{"Structured Query Language", true},
		{"  Structured query language  ", true},
		{"STRUCTURED QUERY LANGUAGE", true},
		{"\tstructured query language\n", true},
		{"Structured  Query Language", false},
		{"SQL", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, mod.CheckAnswer(tt.answer))
		})
	}
}

func TestParseReportView(t *testing.T) {
	tests := []struct {
		in             string
		want           ReportView
		withCompleted  bool
		withIncomplete bool
	}{
		{"", ViewIncomplete, false, true},
		{"incomplete", ViewIncomplete, false, true},
		{"completed", ViewCompleted, true, false},
		{" ALL ", ViewAll, true, true},
		{"lol", ViewIncomplete, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseReportView(tt.in)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.withCompleted, v.IncludesCompleted())
			assert.Equal(t, tt.withIncomplete, v.IncludesIncomplete())
		})
	}
}

func TestCleanOrdering(t *testing.T) {
	got := CleanOrdering([]core.DBOrdering{
		{Field: "title", Ascending: true},
		{Field: "password_hash"},
		{Field: "Completed_At"},
		{Field: "m.id; DROP TABLE users"},
	})
	assert.Equal(t, []core.DBOrdering{
		{Field: "m.title", Ascending: true},
		{Field: "p.completed_at"},
	}, got)
}

func TestKnownOrdering(t *testing.T) {
	got := knownOrdering([]core.DBOrdering{
		{Field: "bogus"},
		{Field: "Completed_At", Ascending: true},
		{Field: "m.title"},
	})
	assert.Equal(t, []core.DBOrdering{{Field: "completed_at", Ascending: true}}, got)
	assert.Empty(t, knownOrdering(nil))
}
