package main

import (
	"log"

	"docchat-be/internal/config"
	"docchat-be/internal/model"
	"docchat-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running migration for document_chunks...")
	if err := database.Migrate(db, &model.DocumentChunk{}); err != nil {
		log.Fatalf("Error: %v", err)
	}

	// cosine distance index used by the similarity search
	indexSQL := `CREATE INDEX IF NOT EXISTS document_chunks_embedding_idx
		ON document_chunks USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("✅ Success: Database migration completed.")
}
