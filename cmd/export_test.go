package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/parser"
	"github.com/Tiliavir/reti/internal/store"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func exportFixture(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	s.FeePerHour = 60
	p := parser.New(parser.Tolerant, model.Date{Year: 2017, Month: time.January, Day: 1})
	for _, line := range []string{
		"2017-03-20 12:30-17:00 08:00-11:30-1.5 # done, finally",
		"2016-12-24 10:00-11:00",
	} {
		day, err := p.ParseLine(line)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.AddDay(day); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestWriteLegacy(t *testing.T) {
	var buf bytes.Buffer
	writeLegacy(&buf, exportFixture(t))
	want := "2016-12-24   10:00-11:00\n" +
		"2017-03-20   08:00-11:30-1.5  12:30-17:00   # done, finally\n"
	if buf.String() != want {
		t.Errorf("legacy export =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	writeCSV(&buf, exportFixture(t))
	want := "date,start,stop,factor,worked_minutes,earned,comment\n" +
		"2016-12-24,10:00,11:00,1,60,60.00,\n" +
		"2017-03-20,08:00,11:30,1.5,210,315.00,\"done, finally\"\n" +
		"2017-03-20,12:30,17:00,1,270,270.00,\"done, finally\"\n"
	if buf.String() != want {
		t.Errorf("csv export =\n%s\nwant\n%s", buf.String(), want)
	}
}
