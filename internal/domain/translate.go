package domain

// German display names, used in notification mails.

var roleGerman = map[Role]string{
	RoleAdmin:   "Administrator",
	RoleAuthor:  "Autor",
	RoleTutor:   "Tutor",
	RoleStudent: "Student",
}

var ticketTypeGerman = map[TicketType]string{
	TicketTypeCourseBook:            "Skript",
	TicketTypeReadingList:           "Literaturliste",
	TicketTypeInteractiveBook:       "Interactive Book",
	TicketTypePracticeExam:          "Musterklausur",
	TicketTypePracticeExamSolution:  "Musterlösung",
	TicketTypeVodcast:               "Vodcast",
	TicketTypePodcast:               "Podcast",
	TicketTypePresentation:          "Präsentation",
	TicketTypeLiveTutorialRecording: "Live Tutorium Aufzeichnung",
	TicketTypeOnlineTest:            "Online Test",
}

var categoryGerman = map[Category]string{
	CategoryEditorial:   "Redaktioneller Fehler",
	CategoryContent:     "Inhaltlicher Fehler",
	CategoryImprovement: "Verbesserungsvorschlag",
	CategoryAddition:    "Ergänzungsvorschlag",
}

var priorityGerman = map[Priority]string{
	PriorityCritical: "Kritisch",
	PriorityHigh:     "Hoch",
	PriorityMedium:   "Mittel",
	PriorityLow:      "Niedrig",
}

var statusGerman = map[Status]string{
	StatusOpen:       "Offen",
	StatusInProgress: "In Bearbeitung",
	StatusAccepted:   "Akzeptiert",
	StatusRefused:    "Abgelehnt",
	StatusCompleted:  "Abgeschlossen",
}

func (r Role) German() string       { return germanOr(roleGerman[r], string(r)) }
func (t TicketType) German() string { return germanOr(ticketTypeGerman[t], string(t)) }
func (c Category) German() string   { return germanOr(categoryGerman[c], string(c)) }
func (p Priority) German() string   { return germanOr(priorityGerman[p], string(p)) }
func (s Status) German() string     { return germanOr(statusGerman[s], string(s)) }

func germanOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
