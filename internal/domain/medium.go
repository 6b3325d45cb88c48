package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediumKind is the shape of the location descriptor attached to a ticket.
type MediumKind string

const (
	MediumKindText         MediumKind = "text"
	MediumKindRecording    MediumKind = "recording"
	MediumKindInteractive  MediumKind = "interactive"
	MediumKindQuestionaire MediumKind = "questionaire"
)

// Medium is implemented by MediumText, MediumRecording, MediumInteractive and MediumQuestionaire.
type Medium interface {
	Kind() MediumKind
	Validate() error
}

// MediumText locates an issue in text based content.
type MediumText struct {
	Page int
	Line int
}

// MediumRecording locates an issue in recorded content.
type MediumRecording struct {
	Time TimeOfDay
}

// MediumInteractive locates an issue in interactive content like websites.
type MediumInteractive struct {
	URL string
}

// MediumQuestionaire locates an issue in question/answer content like tests.
type MediumQuestionaire struct {
	Question int
	Answer   string
}

func (MediumText) Kind() MediumKind         { return MediumKindText }
func (MediumRecording) Kind() MediumKind    { return MediumKindRecording }
func (MediumInteractive) Kind() MediumKind  { return MediumKindInteractive }
func (MediumQuestionaire) Kind() MediumKind { return MediumKindQuestionaire }

func (m MediumText) Validate() error {
	if m.Page <= 0 || m.Line <= 0 {
		return errors.New("page and line must be positive")
	}
	return nil
}

func (m MediumRecording) Validate() error {
	return m.Time.Validate()
}

func (m MediumInteractive) Validate() error {
	if strings.TrimSpace(m.URL) == "" {
		return errors.New("url required")
	}
	return nil
}

func (m MediumQuestionaire) Validate() error {
	if m.Question <= 0 {
		return errors.New("question must be positive")
	}
	if strings.TrimSpace(m.Answer) == "" {
		return errors.New("answer required")
	}
	return nil
}

// ValidateMedium checks that m is well formed and of the kind ty requires.
func ValidateMedium(ty TicketType, m Medium) error {
	if m == nil {
		return errors.New("medium required")
	}
	if want := ty.Medium(); m.Kind() != want {
		return fmt.Errorf("ticket type %s requires a %s medium, got %s", ty, want, m.Kind())
	}
	return m.Validate()
}

// TimeOfDay is a wall clock position inside a recording, without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

const timeOfDayLayout = "15:04:05"

// ParseTimeOfDay parses the HH:MM:SS form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute(), Second: parsed.Second()}, nil
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("invalid time of day %02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
