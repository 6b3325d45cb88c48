// Package gormrepo implements the repository interfaces on top of GORM. It backs the
// embedded SQLite deployment and the storage tests.
package gormrepo

import (
	"time"

	"gorm.io/gorm"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"size:200;not null"`
	Role         string `gorm:"size:20;not null;index"`
	Active       bool   `gorm:"not null"`
	Code         string `gorm:"size:50"`
}

func (userModel) TableName() string { return "users" }

type courseModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Code     string `gorm:"size:50;not null;uniqueIndex"`
	Title    string `gorm:"size:200;not null"`
	AuthorID int64  `gorm:"not null;index"`
	TutorID  int64  `gorm:"not null;index"`
	Active   bool   `gorm:"not null"`
}

func (courseModel) TableName() string { return "courses" }

type ticketModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Type        string `gorm:"size:50;not null"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"size:20;not null;index"`
	Priority    string `gorm:"size:20;not null;index"`
	Status      string `gorm:"size:20;not null;index"`
	CourseID    int64  `gorm:"not null;index"`
	CreatorID   int64  `gorm:"not null;index"`
	Forwarded   bool   `gorm:"not null;default:false"`
}

func (ticketModel) TableName() string { return "tickets" }

// The Ticket fields below exist for the foreign key constraints and are never loaded.

type mediumTextModel struct {
	TicketID int64        `gorm:"primaryKey;autoIncrement:false"`
	Ticket   *ticketModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	Page     int          `gorm:"not null"`
	Line     int          `gorm:"not null"`
}

func (mediumTextModel) TableName() string { return "medium_texts" }

type mediumRecordingModel struct {
	TicketID int64        `gorm:"primaryKey;autoIncrement:false"`
	Ticket   *ticketModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	Time     string       `gorm:"size:8;not null"`
}

func (mediumRecordingModel) TableName() string { return "medium_recordings" }

type mediumInteractiveModel struct {
	TicketID int64        `gorm:"primaryKey;autoIncrement:false"`
	Ticket   *ticketModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	URL      string       `gorm:"column:url;not null"`
}

func (mediumInteractiveModel) TableName() string { return "medium_interactives" }

type mediumQuestionaireModel struct {
	TicketID int64        `gorm:"primaryKey;autoIncrement:false"`
	Ticket   *ticketModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	Question int          `gorm:"not null"`
	Answer   string       `gorm:"type:text;not null"`
}

func (mediumQuestionaireModel) TableName() string { return "medium_questionaires" }

type commentModel struct {
	ID        int64        `gorm:"primaryKey;autoIncrement"`
	TicketID  int64        `gorm:"not null;index"`
	Ticket    *ticketModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatorID int64        `gorm:"not null;index"`
	Timestamp time.Time    `gorm:"not null"`
	Message   string       `gorm:"type:text;not null"`
}

func (commentModel) TableName() string { return "comments" }

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&courseModel{},
		&ticketModel{},
		&mediumTextModel{},
		&mediumRecordingModel{},
		&mediumInteractiveModel{},
		&mediumQuestionaireModel{},
		&commentModel{},
	)
}
