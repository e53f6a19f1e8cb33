package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalEntry is a stored trading-journal record. The bson tags define
// the document layout; the json tags define the wire shape (ObjectID and
// time.Time marshal to the hex id and ISO-8601 text clients expect).
type JournalEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date        string             `bson:"date" json:"date"`
	Instrument  string             `bson:"instrument" json:"instrument"`
	Session     string             `bson:"session" json:"session"`
	RR          *float64           `bson:"rr,omitempty" json:"rr,omitempty"`
	LotSize     *float64           `bson:"lot_size,omitempty" json:"lot_size,omitempty"`
	Outcome     string             `bson:"outcome" json:"outcome"`
	Notes       string             `bson:"notes" json:"notes"`
	Tags        []string           `bson:"tags" json:"tags"`
	Screenshots []string           `bson:"screenshots" json:"screenshots"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// EntryCreate is the payload for creating an entry. Session and outcome
// are closed enumerations enforced at bind time.
type EntryCreate struct {
	Date        string   `json:"date" binding:"required"`
	Instrument  string   `json:"instrument" binding:"required"`
	Session     string   `json:"session" binding:"required,oneof=NY London Asia Other"`
	RR          *float64 `json:"rr"`
	LotSize     *float64 `json:"lot_size"`
	Outcome     string   `json:"outcome" binding:"required,oneof=Win Loss Break-even"`
	Notes       *string  `json:"notes"`
	Tags        []string `json:"tags"`
	Screenshots []string `json:"screenshots"`
}

// EntryUpdate is a partial update. A nil field (absent or JSON null)
// leaves the stored value unchanged.
type EntryUpdate struct {
	Date        *string   `json:"date"`
	Instrument  *string   `json:"instrument"`
	Session     *string   `json:"session" binding:"omitempty,oneof=NY London Asia Other"`
	RR          *float64  `json:"rr"`
	LotSize     *float64  `json:"lot_size"`
	Outcome     *string   `json:"outcome" binding:"omitempty,oneof=Win Loss Break-even"`
	Notes       *string   `json:"notes"`
	Tags        *[]string `json:"tags"`
	Screenshots *[]string `json:"screenshots"`
}

// NewJournalEntry builds a stored record from a create payload, filling
// defaults and stamping created_at. The id is left zero so the store
// assigns it on insert; updated_at stays absent until the first update.
func NewJournalEntry(in EntryCreate, now time.Time) JournalEntry {
	e := JournalEntry{
		Date:        in.Date,
		Instrument:  in.Instrument,
		Session:     in.Session,
		RR:          in.RR,
		LotSize:     in.LotSize,
		Outcome:     in.Outcome,
		Tags:        in.Tags,
		Screenshots: in.Screenshots,
		CreatedAt:   now.UTC(),
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Screenshots == nil {
		e.Screenshots = []string{}
	}
	return e
}
