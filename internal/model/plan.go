package model

import (
	"fmt"
	"time"
)

type UnitState string

const (
	UnitPending UnitState = "pending"
	UnitRead    UnitState = "read"
)

// TimeRange is a daily window on the 24-hour clock, local wall-clock time.
// Start > End means the range wraps midnight (e.g. 22:00-06:00).
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type UserSettings struct {
	QuietHours   TimeRange `json:"quietHours"`
	WorkingHours TimeRange `json:"workingHours"`
}

// DefaultSettings are used whenever no settings have been stored yet.
func DefaultSettings() UserSettings {
	return UserSettings{
		QuietHours:   TimeRange{Start: "22:00", End: "06:00"},
		WorkingHours: TimeRange{Start: "08:00", End: "17:00"},
	}
}

type PlanBoundaries struct {
	StartBook    string `json:"start_book"`
	StartChapter int    `json:"start_chapter"`
	StartVerse   int    `json:"start_verse"`
	EndBook      string `json:"end_book"`
	EndChapter   int    `json:"end_chapter"`
	EndVerse     int    `json:"end_verse"`
}

type Plan struct {
	ID               string          `json:"id"`
	Books            []string        `json:"books"`
	TargetDate       string          `json:"target_date,omitempty"`
	Frequency        string          `json:"frequency"`
	MaxVersesPerUnit int             `json:"max_verses_per_unit"`
	Boundaries       *PlanBoundaries `json:"boundaries,omitempty"`
	QuietHours       *TimeRange      `json:"quiet_hours,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CreatePlanRequest struct {
	Books            []string        `json:"books"`
	TargetDate       string          `json:"target_date,omitempty"`
	Frequency        string          `json:"frequency,omitempty"`
	MaxVersesPerUnit int             `json:"max_verses_per_unit,omitempty"`
	TimeLapMinutes   int             `json:"time_lap_minutes,omitempty"`
	QuietHours       *TimeRange      `json:"quiet_hours,omitempty"`
	WorkingHours     *TimeRange      `json:"working_hours,omitempty"`
	Boundaries       *PlanBoundaries `json:"boundaries,omitempty"`
	DeviceID         string          `json:"device_id"`
}

type CreatePlanResponse struct {
	PlanID string `json:"plan_id"`
}

// Unit is one deliverable reading portion. Created server-side; the client
// only ever fetches "next pending unit" and flips it to read.
type Unit struct {
	ID         string    `json:"id"`
	Book       string    `json:"book"`
	Chapter    int       `json:"chapter"`
	VerseStart int       `json:"verse_start"`
	VerseEnd   int       `json:"verse_end"`
	Text       string    `json:"text"`
	UnitIndex  int       `json:"unit_index"`
	State      UnitState `json:"state"`
}

// Reference renders the unit's scripture reference, e.g. "John 3:16-18".
func (u Unit) Reference() string {
	if u.VerseStart == u.VerseEnd {
		return fmt.Sprintf("%s %d:%d", u.Book, u.Chapter, u.VerseStart)
	}
	return fmt.Sprintf("%s %d:%d-%d", u.Book, u.Chapter, u.VerseStart, u.VerseEnd)
}

type DailyProgress struct {
	Date       string `json:"date"`
	VersesRead int    `json:"verses_read"`
}

// Progress is a read-only snapshot computed server-side per plan.
type Progress struct {
	CompletedUnits  int             `json:"completed_units"`
	TotalUnits      int             `json:"total_units"`
	CompletedVerses int             `json:"completed_verses"`
	TotalVerses     int             `json:"total_verses"`
	DailyHistory    []DailyProgress `json:"daily_history"`
}

type BookMetadata struct {
	Book         string `json:"book"`
	ChapterCount int    `json:"chapter_count"`
	VerseCounts  []int  `json:"verse_counts"`
}

type RandomVerse struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}
