package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const entriesCollection = "journalentry"

var db *mongo.Database

// initDB opens the MongoDB connection using DATABASE_URL. A missing URL
// is not fatal: the handle stays nil and every data endpoint answers 503
// until the process is restarted with a connection string.
func initDB() {
	uri := os.Getenv("DATABASE_URL")
	if uri == "" {
		log.Println("DATABASE_URL is not set; data endpoints will return 503")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("mongo connect failed: %v; data endpoints will return 503", err)
		return
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Keep the handle; /test reports connectivity and data calls
		// surface their own errors.
		log.Printf("mongo ping failed: %v", err)
	}
	db = client.Database(databaseName())
}

// databaseName returns the database to use (configurable via DATABASE_NAME).
func databaseName() string {
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		return v
	}
	return "traders_journal"
}

// entries returns the journal collection. Callers must have checked that
// db is configured.
func entries() *mongo.Collection {
	return db.Collection(entriesCollection)
}
