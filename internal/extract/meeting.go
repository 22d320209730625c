package extract

import (
	"fmt"

	"github.com/nao1215/ttscrape/internal/model"
)

type meetingState int

const (
	scanningForDay meetingState = iota
	consumedDay
)

// meetingFields is the number of tokens that must follow a day.
const meetingFields = 3

// parseMeetings reads the meeting block of a class. Each meeting is a day
// token followed by time, location and weeks, then optionally an
// instructor. Whether the instructor is present is only known by peeking:
// a day token there starts the next meeting and is left unconsumed.
// Tokens before a day (column headings and the like) are skipped.
//
// The returned slice is never nil.
func parseMeetings(tokens []string) ([]model.Time, error) {
	var (
		times = []model.Time{}
		state = scanningForDay
		cur   model.Time
		c     = &cursor{tokens: tokens}
	)

	for !c.done() {
		switch state {
		case scanningForDay:
			if day, ok := model.ParseDay(c.next()); ok {
				cur = model.Time{Day: day}
				state = consumedDay
			}
		case consumedDay:
			if c.remaining() < meetingFields {
				return nil, fmt.Errorf("%w: %s has %d of %d fields", ErrTruncatedMeetingBlock, cur.Day, c.remaining(), meetingFields)
			}
			cur.Time = c.next()
			cur.Location = c.next()
			cur.Weeks = c.next()
			if !c.done() {
				if _, isDay := model.ParseDay(c.peek()); !isDay {
					instructor := c.next()
					cur.Instructor = &instructor
				}
			}
			times = append(times, cur)
			state = scanningForDay
		}
	}

	if state == consumedDay {
		return nil, fmt.Errorf("%w: %s has 0 of %d fields", ErrTruncatedMeetingBlock, cur.Day, meetingFields)
	}
	return times, nil
}
