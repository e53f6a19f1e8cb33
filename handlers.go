package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"tjournal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupRoutes(r *gin.Engine) {
	r.GET("/", rootHandler)
	r.GET("/test", testDatabaseHandler)
	api := r.Group("/api")
	api.POST("/entries", createEntryHandler)
	api.GET("/entries", listEntriesHandler)
	api.GET("/entries/:id", getEntryHandler)
	api.PATCH("/entries/:id", updateEntryHandler)
	api.DELETE("/entries/:id", deleteEntryHandler)
	api.GET("/tags", tagsHandler)
}

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Trader's Journal API is running"})
}

// requireDB answers 503 when the store was never configured. Every
// data-touching handler calls this before any store operation.
func requireDB(c *gin.Context) bool {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return false
	}
	return true
}

// entryID decodes the :id path parameter, answering 400 on input that is
// not a well-formed object id. Malformed ids never reach the store.
func entryID(c *gin.Context) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}
	return oid, true
}

// createEntryHandler validates the payload, stamps created_at and returns
// the record as persisted (re-fetched by the assigned id).
func createEntryHandler(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	var req models.EntryCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry := models.NewJournalEntry(req, time.Now())
	ctx := c.Request.Context()
	res, err := entries().InsertOne(ctx, entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	var created models.JournalEntry
	if err := entries().FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&created); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch after create failed"})
		return
	}
	c.JSON(http.StatusOK, created)
}

// listEntriesHandler lists entries matching the optional date/tag/q
// filters, bounded by limit (default 200), in store order.
func listEntriesHandler(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	filter := buildEntryFilter(c.Query("date"), c.Query("tag"), c.Query("q"))
	limit := parseLimit(c.Query("limit"))
	ctx := c.Request.Context()
	cur, err := entries().Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	items := []models.JournalEntry{}
	if err := cur.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func getEntryHandler(c *gin.Context) {
	oid, ok := entryID(c)
	if !ok {
		return
	}
	if !requireDB(c) {
		return
	}
	var entry models.JournalEntry
	err := entries().FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// updateEntryHandler applies a partial update: only fields present and
// non-null in the payload are written, plus a fresh updated_at. The
// updated record is re-fetched so the response reflects stored state.
func updateEntryHandler(c *gin.Context) {
	oid, ok := entryID(c)
	if !ok {
		return
	}
	if !requireDB(c) {
		return
	}
	var req models.EntryUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	res, err := entries().UpdateByID(ctx, oid, bson.M{"$set": updateFields(req, time.Now())})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var updated models.JournalEntry
	if err := entries().FindOne(ctx, bson.M{"_id": oid}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch after update failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteEntryHandler(c *gin.Context) {
	oid, ok := entryID(c)
	if !ok {
		return
	}
	if !requireDB(c) {
		return
	}
	res, err := entries().DeleteOne(c.Request.Context(), bson.M{"_id": oid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": oid.Hex()})
}

// tagsHandler returns the distinct tags across all entries ordered by
// occurrence count descending, capped at 100.
func tagsHandler(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$tags"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: 100}},
	}
	ctx := c.Request.Context()
	cur, err := entries().Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	var rows []struct {
		Tag   string `bson:"_id"`
		Count int32  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	tags := make([]string, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, r.Tag)
	}
	c.JSON(http.StatusOK, tags)
}

// testDatabaseHandler is a best-effort connectivity diagnostic. Failures
// are reported as status strings, never as HTTP errors.
func testDatabaseHandler(c *gin.Context) {
	resp := gin.H{
		"backend":           "running",
		"database":          "not available",
		"database_url":      nil,
		"database_name":     nil,
		"connection_status": "not connected",
		"collections":       []string{},
	}
	if db == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp["database"] = "available"
	if os.Getenv("DATABASE_URL") != "" {
		resp["database_url"] = "set"
	} else {
		resp["database_url"] = "not set"
	}
	resp["database_name"] = db.Name()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		resp["database"] = "connected but error: " + truncate(err.Error(), 80)
		c.JSON(http.StatusOK, resp)
		return
	}
	if len(names) > 10 {
		names = names[:10]
	}
	resp["collections"] = names
	resp["database"] = "connected and working"
	resp["connection_status"] = "connected"
	c.JSON(http.StatusOK, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
