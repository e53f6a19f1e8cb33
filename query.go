package main

import (
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"tjournal/models"
)

const defaultListLimit = 200

// searchFields are the text fields the free-text q parameter matches against.
var searchFields = []string{"notes", "instrument", "session", "outcome"}

// buildEntryFilter translates the optional list parameters into a Mongo
// filter document. Empty parameters contribute no clause, so with none
// set the filter matches every record. The q text is quoted with
// regexp.QuoteMeta so it always means a literal case-insensitive
// substring, never a pattern.
func buildEntryFilter(date, tag, q string) bson.M {
	filter := bson.M{}
	if date != "" {
		filter["date"] = date
	}
	if tag != "" {
		filter["tags"] = bson.M{"$in": []string{tag}}
	}
	if q != "" {
		pattern := regexp.QuoteMeta(q)
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
		}
		filter["$or"] = or
	}
	return filter
}

// parseLimit bounds listing queries. Absent or unusable input falls back
// to the default of 200.
func parseLimit(raw string) int64 {
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}

// updateFields collects the explicitly provided fields of a partial
// update into a $set document. updated_at is always stamped, even when
// the payload changes nothing else.
func updateFields(u models.EntryUpdate, now time.Time) bson.M {
	set := bson.M{}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Instrument != nil {
		set["instrument"] = *u.Instrument
	}
	if u.Session != nil {
		set["session"] = *u.Session
	}
	if u.RR != nil {
		set["rr"] = *u.RR
	}
	if u.LotSize != nil {
		set["lot_size"] = *u.LotSize
	}
	if u.Outcome != nil {
		set["outcome"] = *u.Outcome
	}
	if u.Notes != nil {
		set["notes"] = *u.Notes
	}
	if u.Tags != nil {
		set["tags"] = *u.Tags
	}
	if u.Screenshots != nil {
		set["screenshots"] = *u.Screenshots
	}
	set["updated_at"] = now.UTC()
	return set
}
