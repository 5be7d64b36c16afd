package main

import (
	"log"
	"os"

	"ai-supportdesk-be/internal/model"
	"ai-supportdesk-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.ContactSession{},
		&model.Conversation{},
		&model.ThreadMessage{},
		&model.KnowledgeEntry{},
		&model.KnowledgeChunk{},
		&model.PluginCredential{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating indexes AutoMigrate cannot express...")

	postMigrationSQL := []string{
		// Vector search path: cosine distance over a namespace slice.
		`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_embedding
		 ON knowledge_chunks USING hnsw (embedding vector_cosine_ops);`,

		// Append path reads MAX(seq) per thread; pagination reads seq ranges.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_thread_messages_thread_seq
		 ON thread_messages (thread_id, seq);`,

		// Idempotent upload check.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_knowledge_entries_namespace_hash
		 ON knowledge_entries (namespace, content_hash);`,

		// One credential per organization and plugin service.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_plugin_credentials_org_service
		 ON plugin_credentials (organization_id, service);`,

		// Dashboard list: keyset pagination over (created_at, id) per org.
		`CREATE INDEX IF NOT EXISTS idx_conversations_org_created
		 ON conversations (organization_id, created_at DESC, id DESC);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Migration completed successfully.")
}
