// Package parser reads the legacy line format, one day per line:
//
//	[date] part [part ...] [# comment]
//
// where date is y-m-d, m-d or d and part is HH:MM-HH:MM[-factor]
// (HHMM is accepted for times as well).
package parser

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/reti/internal/model"
)

// Mode selects how strictly a line has to follow the grammar.
type Mode int

const (
	// Tolerant skips tokens that are not parts and substitutes the default
	// factor for a malformed one.
	Tolerant Mode = iota
	// Strict rejects the whole line on any non-conforming token.
	Strict
)

func (m Mode) String() string {
	switch m {
	case Tolerant:
		return "tolerant"
	case Strict:
		return "strict"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Parser parses legacy lines. Missing date fields default to today.
type Parser struct {
	mode  Mode
	today model.Date
}

func New(mode Mode, today model.Date) *Parser {
	return &Parser{mode: mode, today: today}
}

func (p *Parser) Mode() Mode {
	return p.mode
}

// Today returns the date used for missing date fields.
func (p *Parser) Today() model.Date {
	return p.today
}

// ParseLine parses one line into a day. A comment-only line yields
// ErrCommentLine. In tolerant mode the day may carry no parts.
func (p *Parser) ParseLine(line string) (model.Day, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Day{}, fail(ErrEmptyLine, line, nil)
	}
	if strings.HasPrefix(line, "#") {
		return model.Day{}, ErrCommentLine
	}

	data, comment := line, ""
	if i := strings.IndexByte(line, '#'); i >= 0 {
		data, comment = line[:i], strings.TrimSpace(line[i+1:])
	}

	tokens := strings.Fields(data)
	if len(tokens) == 0 {
		return model.Day{}, fail(ErrEmptyLine, line, nil)
	}

	day := model.NewDay(p.today)
	if date, err := p.ParseDate(tokens[0]); err == nil {
		day.Date = date
		tokens = tokens[1:]
	} else if _, perr := p.ParsePart(tokens[0]); perr != nil {
		if errors.Is(perr, model.ErrStopBeforeStart) {
			return model.Day{}, perr
		}
		return model.Day{}, fail(ErrMalformedLine, tokens[0], errors.Join(err, perr))
	}

	for _, tok := range tokens {
		part, err := p.ParsePart(tok)
		if err != nil {
			if p.mode == Strict || errors.Is(err, model.ErrStopBeforeStart) {
				return model.Day{}, err
			}
			continue
		}
		day.Parts = append(day.Parts, part)
	}
	if p.mode == Strict && len(day.Parts) == 0 {
		return model.Day{}, fail(ErrMalformedLine, line, errors.New("no parts"))
	}

	day.SetComment(comment)
	return day, nil
}

// ParseDate parses "y-m-d", "m-d" or "d"; missing fields come from today.
func (p *Parser) ParseDate(tok string) (model.Date, error) {
	tok = strings.TrimSpace(tok)
	fields := strings.Split(tok, "-")
	if len(fields) > 3 {
		return model.Date{}, fail(ErrMalformedDate, tok, nil)
	}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := number(f)
		if err != nil {
			return model.Date{}, fail(ErrMalformedDate, tok, err)
		}
		nums[i] = n
	}

	year, month, day := p.today.Year, int(p.today.Month), 0
	switch len(nums) {
	case 3:
		year, month, day = nums[0], nums[1], nums[2]
	case 2:
		month, day = nums[0], nums[1]
	case 1:
		day = nums[0]
	}
	if year > 65535 {
		return model.Date{}, fail(ErrMalformedDate, tok, errors.New("year out of range"))
	}
	d, err := model.NewDate(year, time.Month(month), day)
	if err != nil {
		return model.Date{}, fail(ErrMalformedDate, tok, err)
	}
	return d, nil
}

// ParsePart parses "start-stop[-factor]". An empty stop, as in "start-" or
// "start--factor", yields an open part. The stop may be "24:00".
func (p *Parser) ParsePart(tok string) (model.Part, error) {
	fields := strings.Split(tok, "-")
	if len(fields) < 2 || len(fields) > 3 {
		return model.Part{}, fail(ErrMalformedPart, tok, nil)
	}
	start, err := ParseTime(fields[0])
	if err != nil {
		return model.Part{}, err
	}

	var part model.Part
	if fields[1] == "" {
		part = model.OpenPart(start)
	} else {
		stop, err := ParseStop(fields[1])
		if err != nil {
			return model.Part{}, err
		}
		part = model.NewPart(start, stop)
		if !part.Valid() {
			return model.Part{}, fail(model.ErrStopBeforeStart, tok, nil)
		}
	}

	if len(fields) == 3 {
		f, err := ParseFactor(fields[2])
		if err != nil {
			if p.mode == Strict {
				return model.Part{}, err
			}
			f = model.DefaultFactor
		}
		part = part.WithFactor(f)
	}
	return part, nil
}

// ParseStop parses a stop time, which unlike a start may be "24:00" or "2400".
func ParseStop(tok string) (model.Clock, error) {
	if tok == "24:00" || tok == "2400" {
		return model.EndOfDay, nil
	}
	return ParseTime(tok)
}

// ParseTime parses "HH:MM" or, failing that, "HHMM".
func ParseTime(tok string) (model.Clock, error) {
	var h, m string
	if i := strings.IndexByte(tok, ':'); i >= 0 {
		h, m = tok[:i], tok[i+1:]
		if len(h) > 2 || len(m) != 2 {
			return 0, fail(ErrMalformedTime, tok, nil)
		}
	} else {
		if len(tok) != 4 {
			return 0, fail(ErrMalformedTime, tok, nil)
		}
		h, m = tok[:2], tok[2:]
	}
	hour, err := number(h)
	if err != nil {
		return 0, fail(ErrMalformedTime, tok, err)
	}
	minute, err := number(m)
	if err != nil {
		return 0, fail(ErrMalformedTime, tok, err)
	}
	c, err := model.NewClock(hour, minute)
	if err != nil {
		return 0, fail(ErrMalformedTime, tok, err)
	}
	return c, nil
}

// ParseFactor parses an unsigned decimal such as "2", "1.5", ".5" or "1.".
func ParseFactor(tok string) (float64, error) {
	digits, dots := 0, 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return 0, fail(ErrMalformedFactor, tok, nil)
		}
	}
	if digits == 0 || dots > 1 {
		return 0, fail(ErrMalformedFactor, tok, nil)
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fail(ErrMalformedFactor, tok, err)
	}
	return f, nil
}

// number parses a non-empty run of ASCII digits.
func number(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number: " + strconv.Quote(s))
		}
	}
	return strconv.Atoi(s)
}
