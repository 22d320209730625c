package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/ttscrape/internal/model"
)

func testCourse() *model.Course {
	return &model.Course{Code: "COMP1511", Career: "Undergraduate"}
}

func TestParseClass_EndToEnd(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"Class Nbr", "1234",
		"Section", "T1A",
		"Teaching Period", "T1 - 01/01/2025",
		"Meeting Information",
		"Mon", "09:00-11:00", "K17-G01", "Wks1-10", "Dr Smith",
		"Tue", "14:00-16:00", "K17-G02", "Wks1-10",
		"Class Notes", "Bring laptop",
	}

	cl, err := ParseClass(tokens, testCourse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cl.ClassNbr != "1234" || cl.Section != "T1A" {
		t.Errorf("unexpected class number/section: %q %q", cl.ClassNbr, cl.Section)
	}
	if cl.Term != "T1" || cl.Year != "2025" {
		t.Errorf("expected term T1 year 2025, got %q %q", cl.Term, cl.Year)
	}
	if got, want := cl.ID(), "COMP1511_Undergraduate_1234_T1_2025"; got != want {
		t.Errorf("expected class id %q, got %q", want, got)
	}
	if cl.Notes == nil || *cl.Notes != "Bring laptop" {
		t.Errorf("expected notes %q, got %v", "Bring laptop", cl.Notes)
	}

	if len(cl.Times) != 2 {
		t.Fatalf("expected 2 times, got %d: %+v", len(cl.Times), cl.Times)
	}
	mon, tue := cl.Times[0], cl.Times[1]
	if mon.Day != model.Monday || mon.Time != "09:00-11:00" || mon.Location != "K17-G01" || mon.Weeks != "Wks1-10" {
		t.Errorf("unexpected Monday meeting %+v", mon)
	}
	if mon.Instructor == nil || *mon.Instructor != "Dr Smith" {
		t.Errorf("expected Monday instructor Dr Smith, got %v", mon.Instructor)
	}
	if tue.Day != model.Tuesday || tue.Time != "14:00-16:00" || tue.Location != "K17-G02" || tue.Weeks != "Wks1-10" {
		t.Errorf("unexpected Tuesday meeting %+v", tue)
	}
	if tue.Instructor != nil {
		t.Errorf("expected no Tuesday instructor, got %q", *tue.Instructor)
	}
}

func TestParseClass_Labels(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"CLASS NBR", "42",
		"Teaching Period", "T3 - 15/09/2025",
		"Activity", "Lecture",
		"Status", "Open",
		"Enrols/Capacity", "10/20",
		"Offering Period", "15/09/2025 - 12/12/2024",
		"Meeting Dates", "15/09/2025 - 12/12/2025",
		"Census Date", "10/10/2025",
		"Consent",
		"Instruction Mode", "Online",
		"Some unknown heading",
	}

	cl, err := ParseClass(tokens, testCourse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.Class{
		CourseID:        "COMP1511_Undergraduate",
		Career:          "Undergraduate",
		ClassNbr:        "42",
		Term:            "T3",
		Activity:        "Lecture",
		Year:            "2024",
		Status:          "Open",
		CourseEnrolment: "10/20",
		OfferingPeriod:  "15/09/2025 - 12/12/2024",
		MeetingDates:    "15/09/2025 - 12/12/2025",
		CensusDate:      "10/10/2025",
		Consent:         "",
		Mode:            "Online",
	}
	if !reflect.DeepEqual(cl, want) {
		t.Errorf("expected %+v, got %+v", want, cl)
	}
	if cl.Times != nil {
		t.Error("expected nil times without a meeting block")
	}
}

func TestParseClass_ValueSpelledLikeLabel(t *testing.T) {
	t.Parallel()

	period := []string{"Teaching Period", "T1 - 17/02/2025"}
	tests := []struct {
		name         string
		tokens       []string
		wantActivity string
		wantStatus   string
		wantMode     string
	}{
		{
			name:         "label appears again later",
			tokens:       []string{"Activity", "Status", "Status", "Open"},
			wantActivity: "Status",
			wantStatus:   "Open",
		},
		{
			name:         "label already read",
			tokens:       []string{"Status", "Open", "Activity", "Status"},
			wantActivity: "Status",
			wantStatus:   "Open",
		},
		{
			name:       "consecutive empty values",
			tokens:     []string{"Activity", "Status", "Instruction Mode", "Online"},
			wantStatus: "",
			wantMode:   "Online",
		},
		{
			name:       "label only repeated in the notes",
			tokens:     []string{"Activity", "Status", "Open", "Class Notes", "Status"},
			wantStatus: "Open",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cl, err := ParseClass(append(append([]string{}, period...), tt.tokens...), testCourse())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cl.Activity != tt.wantActivity || cl.Status != tt.wantStatus || cl.Mode != tt.wantMode {
				t.Errorf("expected activity=%q status=%q mode=%q, got %q %q %q",
					tt.wantActivity, tt.wantStatus, tt.wantMode, cl.Activity, cl.Status, cl.Mode)
			}
		})
	}
}

func TestParseClass_EmptyMeetingBlock(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"Class Nbr", "1",
		"Teaching Period", "T1 - 01/01/2025",
		"Meeting Information",
		"Day", "Time", "Location",
		"Class Notes",
	}

	cl, err := ParseClass(tokens, testCourse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.Times == nil || len(cl.Times) != 0 {
		t.Errorf("expected empty, non-nil times, got %#v", cl.Times)
	}
	if cl.Notes != nil {
		t.Errorf("expected nil notes, got %q", *cl.Notes)
	}
}

func TestParseClass_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []string
		want   error
	}{
		{
			name: "missing class notes",
			tokens: []string{
				"Class Nbr", "1", "Teaching Period", "T1 - 01/01/2025",
				"Meeting Information", "Mon", "09:00", "K17", "1-10",
			},
			want: ErrMissingSentinel,
		},
		{
			name: "truncated meeting",
			tokens: []string{
				"Class Nbr", "1", "Teaching Period", "T1 - 01/01/2025",
				"Meeting Information", "Mon", "09:00", "K17", "Class Notes",
			},
			want: ErrTruncatedMeetingBlock,
		},
		{
			name: "day without fields",
			tokens: []string{
				"Class Nbr", "1", "Teaching Period", "T1 - 01/01/2025",
				"Meeting Information", "Mon", "09:00", "K17", "1-10", "Fri", "Class Notes",
			},
			want: ErrTruncatedMeetingBlock,
		},
		{
			name:   "teaching period without separator",
			tokens: []string{"Class Nbr", "1", "Teaching Period", "T1 01/01/2025"},
			want:   ErrUnparsableDateField,
		},
		{
			name:   "missing teaching period",
			tokens: []string{"Class Nbr", "1"},
			want:   ErrUnparsableDateField,
		},
		{
			name: "offering period without slash",
			tokens: []string{
				"Class Nbr", "1", "Teaching Period", "T1 - 01/01/2025",
				"Offering Period", "sometime",
			},
			want: ErrUnparsableDateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseClass(tt.tokens, testCourse())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseClass_UnparsableDateFieldError(t *testing.T) {
	t.Parallel()

	_, err := ParseClass([]string{"Teaching Period", "T1", "Offering Period", "x"}, testCourse())

	var dateErr *UnparsableDateFieldError
	if !errors.As(err, &dateErr) {
		t.Fatalf("expected UnparsableDateFieldError, got %v", err)
	}
	if dateErr.Field != "Teaching Period" || dateErr.Value != "T1" {
		t.Errorf("unexpected error fields %+v", dateErr)
	}
}

func TestParseMeetings_Invariants(t *testing.T) {
	t.Parallel()

	blocks := [][]string{
		{"Mon", "a", "b", "c", "Tue", "d", "e", "f", "Wed", "g", "h", "i", "Prof X"},
		{"noise", "Sat", "a", "b", "c", "Inst", "more noise", "Sun", "d", "e", "f"},
		{"Thu", "Fri", "Sat", "Sun"},
		{},
	}

	for _, block := range blocks {
		times, err := parseMeetings(block)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", block, err)
		}
		if times == nil {
			t.Errorf("expected non-nil times for %v", block)
		}
		for _, tm := range times {
			if !tm.Day.Valid() {
				t.Errorf("invalid day %q in %v", tm.Day, block)
			}
			if tm.Time == "" || tm.Location == "" || tm.Weeks == "" {
				t.Errorf("incomplete meeting %+v in %v", tm, block)
			}
		}
	}
}

func TestParseMeetings_DayTokensAsFields(t *testing.T) {
	t.Parallel()

	// Fields are consumed unconditionally, even when they look like days.
	times, err := parseMeetings([]string{"Thu", "Fri", "Sat", "Sun"})
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 1 || times[0].Day != model.Thursday || times[0].Weeks != "Sun" {
		t.Errorf("unexpected times %+v", times)
	}
}

func TestParseClass_Idempotent(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"Class Nbr", "7", "Teaching Period", "T2 - 01/06/2025",
		"Meeting Information", "Fri", "10:00", "Online", "1-10", "Class Notes", "a", "b",
	}
	first, err := ParseClass(tokens, testCourse())
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseClass(tokens, testCourse())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical classes, got %+v and %+v", first, second)
	}
	if *first.Notes != "a b" {
		t.Errorf("expected notes joined with spaces, got %q", *first.Notes)
	}
}
