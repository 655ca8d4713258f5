package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"caseflow/internal/config"
	"caseflow/internal/domain/models"
	"caseflow/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema and triggers, don't seed records")
	clearData := flag.Bool("clear-data", false, "Clear all documents and notifications (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables, indexes and the change trigger exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix, cfg.FeedChannel); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("Clearing existing records...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	// Create repository
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)

	// Clear existing data before seeding
	log.Println("Clearing existing records...")
	if err := clearAllData(ctx, pool, tables); err != nil {
		log.Printf("Warning: could not clear data: %v", err)
	}

	// Seed the folder structure, then the documents inside it
	log.Println("Seeding case folders and documents...")

	folderIDs := map[string]string{}
	for _, f := range seedFolders() {
		folder := f.record
		if f.parentKey != "" {
			parentID := folderIDs[f.parentKey]
			folder.ParentFolderID = &parentID
		}
		if err := docRepo.Create(ctx, folder); err != nil {
			log.Fatalf("Failed to create folder %q: %v", folder.Title, err)
		}
		folderIDs[f.key] = folder.ID
		log.Printf("Created folder: %s (ID: %s)", folder.Title, folder.ID)
	}

	for _, d := range seedDocuments() {
		doc := d.record
		parentID := folderIDs[d.parentKey]
		doc.ParentFolderID = &parentID
		if err := docRepo.Create(ctx, doc); err != nil {
			log.Fatalf("Failed to create document %q: %v", doc.Title, err)
		}
		log.Printf("Created document: %s (ID: %s)", doc.Title, doc.ID)
	}

	log.Println("Seeding complete")
}

// runSchema creates tables, indexes and the pg_notify change trigger.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix, feedChannel string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			is_folder BOOLEAN NOT NULL DEFAULT FALSE,
			parent_folder_id UUID REFERENCES ` + tables.Documents + `(id) ON DELETE SET NULL,
			folder_type TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			storage_path TEXT,
			ai_processing_status TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createNotifications := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notifications + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			item_id UUID,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createNotifications); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_parent ON ` + tables.Documents + `(parent_folder_id)`,
		// Sibling titles are unique; root-level records need the partial
		// index because UNIQUE treats NULL parents as distinct.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_sibling_title ON ` + tables.Documents + `(parent_folder_id, title) WHERE parent_folder_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_root_title ON ` + tables.Documents + `(title) WHERE parent_folder_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_client ON ` + tables.Documents + `((metadata->>'client_id'))`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notifications_user ON ` + tables.Notifications + `(user_id, read)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	// Row-change trigger feeding the LISTEN/NOTIFY change stream. The
	// payload shape (op/table/record/old_record) is what the changefeed
	// decoder expects.
	triggerFn := `
		CREATE OR REPLACE FUNCTION ` + tablePrefix + `notify_document_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('` + feedChannel + `', json_build_object(
				'op', TG_OP,
				'table', TG_TABLE_NAME,
				'record', CASE WHEN TG_OP = 'DELETE' THEN NULL ELSE row_to_json(NEW) END,
				'old_record', CASE WHEN TG_OP = 'INSERT' THEN NULL ELSE row_to_json(OLD) END,
				'at', NOW()
			)::text);
			RETURN COALESCE(NEW, OLD);
		END;
		$$ LANGUAGE plpgsql
	`
	if _, err := pool.Exec(ctx, triggerFn); err != nil {
		return err
	}

	dropTrigger := `DROP TRIGGER IF EXISTS ` + tablePrefix + `documents_changed ON ` + tables.Documents
	if _, err := pool.Exec(ctx, dropTrigger); err != nil {
		return err
	}
	createTrigger := `
		CREATE TRIGGER ` + tablePrefix + `documents_changed
		AFTER INSERT OR UPDATE OR DELETE ON ` + tables.Documents + `
		FOR EACH ROW EXECUTE FUNCTION ` + tablePrefix + `notify_document_change()
	`
	if _, err := pool.Exec(ctx, createTrigger); err != nil {
		return err
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Notifications,
		tables.Documents,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}

	return nil
}

// clearAllData clears all documents and notifications
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Notifications); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Documents); err != nil {
		return err
	}
	return nil
}

type seedFolder struct {
	key       string
	parentKey string
	record    *models.Document
}

type seedRecord struct {
	parentKey string
	record    *models.Document
}

func seedFolders() []seedFolder {
	return []seedFolder{
		{
			key: "client-hernandez",
			record: &models.Document{
				Title:      "Hernandez, Maria",
				IsFolder:   true,
				FolderType: models.FolderTypeClient,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
				},
			},
		},
		{
			key: "client-okafor",
			record: &models.Document{
				Title:      "Okafor, Daniel",
				IsFolder:   true,
				FolderType: models.FolderTypeClient,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1002",
					ClientName:    "Daniel Okafor",
				},
			},
		},
		{
			key:       "hernandez-forms",
			parentKey: "client-hernandez",
			record: &models.Document{
				Title:      "Petition Forms",
				IsFolder:   true,
				FolderType: models.FolderTypeForm,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
				},
			},
		},
		{
			key:       "hernandez-financial",
			parentKey: "client-hernandez",
			record: &models.Document{
				Title:      "Financial Records",
				IsFolder:   true,
				FolderType: models.FolderTypeFinancial,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
				},
			},
		},
		{
			key:       "okafor-forms",
			parentKey: "client-okafor",
			record: &models.Document{
				Title:      "Petition Forms",
				IsFolder:   true,
				FolderType: models.FolderTypeForm,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1002",
					ClientName:    "Daniel Okafor",
				},
			},
		},
		{
			key: "reference",
			record: &models.Document{
				Title:      "Reference Material",
				IsFolder:   true,
				FolderType: models.FolderTypeGeneral,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
				},
			},
		},
	}
}

func seedDocuments() []seedRecord {
	return []seedRecord{
		{
			parentKey: "hernandez-forms",
			record: &models.Document{
				Title:            "B101 Voluntary Petition.pdf",
				StoragePath:      stringPtr("seed/hernandez/b101-voluntary-petition.pdf"),
				ProcessingStatus: models.ProcessingStatusCompleted,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
					FormType:      "B101",
					ExtractedFields: map[string]string{
						"debtor_name": "Maria Hernandez",
						"chapter":     "7",
						"district":    "Central District of California",
						"ssn_last4":   "4821",
					},
				},
			},
		},
		{
			parentKey: "hernandez-forms",
			record: &models.Document{
				Title:            "B106I Schedule I.pdf",
				StoragePath:      stringPtr("seed/hernandez/b106i-schedule-i.pdf"),
				ProcessingStatus: models.ProcessingStatusPending,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
					FormType:      "B106I",
				},
			},
		},
		{
			parentKey: "hernandez-financial",
			record: &models.Document{
				Title:            "Bank Statements 2026-07.pdf",
				StoragePath:      stringPtr("seed/hernandez/bank-statements-2026-07.pdf"),
				ProcessingStatus: models.ProcessingStatusCompleted,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1001",
					ClientName:    "Maria Hernandez",
				},
			},
		},
		{
			parentKey: "okafor-forms",
			record: &models.Document{
				Title:            "B122A-1 Means Test.pdf",
				StoragePath:      stringPtr("seed/okafor/b122a-means-test.pdf"),
				ProcessingStatus: models.ProcessingStatusError,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
					ClientID:      "cl-1002",
					ClientName:    "Daniel Okafor",
					FormType:      "B122A-1",
					NeedsReview:   true,
				},
			},
		},
		{
			parentKey: "reference",
			record: &models.Document{
				Title:            "Chapter 7 Filing Checklist.pdf",
				StoragePath:      stringPtr("seed/reference/chapter-7-filing-checklist.pdf"),
				ProcessingStatus: models.ProcessingStatusCompleted,
				Metadata: models.Metadata{
					SchemaVersion: models.MetadataSchemaVersion,
				},
			},
		},
	}
}

// stringPtr returns a pointer to a string
func stringPtr(s string) *string {
	return &s
}
