package extract

import (
	"fmt"
	"strings"

	"github.com/nao1215/ttscrape/internal/model"
)

// Labels of a class table.
const (
	labelClassNbr        = "Class Nbr"
	labelSection         = "Section"
	labelTeachingPeriod  = "Teaching Period"
	labelActivity        = "Activity"
	labelStatus          = "Status"
	labelEnrolsCapacity  = "Enrols/Capacity"
	labelOfferingPeriod  = "Offering Period"
	labelMeetingDates    = "Meeting Dates"
	labelCensusDate      = "Census Date"
	labelConsent         = "Consent"
	labelInstructionMode = "Instruction Mode"

	sentinelMeetingInformation = "Meeting Information"
	sentinelClassNotes         = "Class Notes"
)

// Separators used to derive term and year.
const (
	periodSeparator = " - "
	dateSeparator   = "/"
)

// classFields maps each label to the field its value is stored in.
var classFields = map[string]func(*model.Class) *string{
	labelClassNbr:        func(c *model.Class) *string { return &c.ClassNbr },
	labelSection:         func(c *model.Class) *string { return &c.Section },
	labelTeachingPeriod:  func(c *model.Class) *string { return &c.Term },
	labelActivity:        func(c *model.Class) *string { return &c.Activity },
	labelStatus:          func(c *model.Class) *string { return &c.Status },
	labelEnrolsCapacity:  func(c *model.Class) *string { return &c.CourseEnrolment },
	labelOfferingPeriod:  func(c *model.Class) *string { return &c.OfferingPeriod },
	labelMeetingDates:    func(c *model.Class) *string { return &c.MeetingDates },
	labelCensusDate:      func(c *model.Class) *string { return &c.CensusDate },
	labelConsent:         func(c *model.Class) *string { return &c.Consent },
	labelInstructionMode: func(c *model.Class) *string { return &c.Mode },
}

// cursor walks a token slice. Not advancing after peek is how a token is
// pushed back.
type cursor struct {
	tokens []string
	pos    int
}

func (c *cursor) done() bool     { return c.pos >= len(c.tokens) }
func (c *cursor) remaining() int { return len(c.tokens) - c.pos }
func (c *cursor) peek() string   { return c.tokens[c.pos] }

func (c *cursor) next() string {
	t := c.tokens[c.pos]
	c.pos++
	return t
}

// classParser recognises labels case-insensitively.
type classParser struct {
	f      *folder
	labels map[string]string // folded -> canonical
}

func newClassParser() *classParser {
	p := &classParser{f: newFolder(), labels: make(map[string]string, len(classFields)+2)}
	for label := range classFields {
		p.labels[p.f.fold(label)] = label
	}
	for _, s := range []string{sentinelMeetingInformation, sentinelClassNotes} {
		p.labels[p.f.fold(s)] = s
	}
	return p
}

// canonical returns the canonical spelling of tok if it is a known label
// or sentinel.
func (p *classParser) canonical(tok string) (string, bool) {
	label, ok := p.labels[p.f.fold(tok)]
	return label, ok
}

// ParseClass builds one class of course from the tokens of its table.
//
// Label tokens are followed by their value unless the next token is itself
// a label, in which case the value is empty. Labels appear once per table,
// so a label-like token is still taken as a value when its label was
// already read or appears again before the meetings or notes. Tokens
// between "Meeting Information" and "Class Notes" are meetings; tokens
// after "Class Notes" are the notes. Unknown tokens outside those blocks are ignored.
func ParseClass(tokens []string, course *model.Course) (model.Class, error) {
	p := newClassParser()
	cl := model.Class{
		CourseID: course.ID(),
		Career:   course.Career,
	}
	c := &cursor{tokens: tokens}
	seen := make(map[string]bool, len(classFields))

	for !c.done() {
		label, ok := p.canonical(c.next())
		if !ok {
			continue
		}

		switch label {
		case sentinelMeetingInformation:
			end := p.indexOf(tokens, c.pos, sentinelClassNotes)
			if end < 0 {
				return model.Class{}, fmt.Errorf("class %s: %w", cl.ClassNbr, ErrMissingSentinel)
			}
			times, err := parseMeetings(tokens[c.pos:end])
			if err != nil {
				return model.Class{}, fmt.Errorf("class %s: %w", cl.ClassNbr, err)
			}
			cl.Times = times
			cl.Notes = joinNotes(tokens[end+1:])
			c.pos = len(tokens)
		case sentinelClassNotes:
			cl.Notes = joinNotes(tokens[c.pos:])
			c.pos = len(tokens)
		default:
			seen[label] = true
			value := ""
			if !c.done() && p.isValue(c.tokens[c.pos:], seen) {
				value = c.next()
			}
			*classFields[label](&cl) = value
		}
	}

	if err := deriveTermAndYear(&cl); err != nil {
		return model.Class{}, fmt.Errorf("class %s: %w", cl.ClassNbr, err)
	}
	return cl, nil
}

// isValue reports whether rest[0] is a value rather than the next label.
func (p *classParser) isValue(rest []string, seen map[string]bool) bool {
	label, ok := p.canonical(rest[0])
	switch {
	case !ok:
		return true
	case label == sentinelMeetingInformation || label == sentinelClassNotes:
		return false
	case seen[label]:
		return true
	}
	end := len(rest)
	for _, s := range []string{sentinelMeetingInformation, sentinelClassNotes} {
		if i := p.indexOf(rest[:end], 1, s); i >= 0 {
			end = i
		}
	}
	return p.indexOf(rest[:end], 1, label) >= 0
}

// indexOf returns the index of the first token at or after from that folds
// to label, or -1.
func (p *classParser) indexOf(tokens []string, from int, label string) int {
	for i := from; i < len(tokens); i++ {
		if l, ok := p.canonical(tokens[i]); ok && l == label {
			return i
		}
	}
	return -1
}

// deriveTermAndYear replaces the full teaching period in cl.Term with its
// term code and sets cl.Year from the offering period, or from the
// teaching period's start date when there is no offering period.
func deriveTermAndYear(cl *model.Class) error {
	period := cl.Term
	term, start, ok := strings.Cut(period, periodSeparator)
	if !ok {
		return &UnparsableDateFieldError{Field: labelTeachingPeriod, Value: period}
	}
	cl.Term = strings.TrimSpace(term)

	field, dated := labelOfferingPeriod, cl.OfferingPeriod
	if dated == "" {
		field, dated = labelTeachingPeriod, start
	}
	i := strings.LastIndex(dated, dateSeparator)
	if i < 0 {
		return &UnparsableDateFieldError{Field: field, Value: dated}
	}
	cl.Year = strings.TrimSpace(dated[i+len(dateSeparator):])
	return nil
}

func joinNotes(tokens []string) *string {
	if len(tokens) == 0 {
		return nil
	}
	notes := strings.Join(tokens, " ")
	return &notes
}
