package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"goportfolio/adapters/postgres"
	"goportfolio/domain/core"
	"goportfolio/domain/portfolio"
	"goportfolio/internal/migration"
	"goportfolio/internal/translator"
	"goportfolio/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [portfolio_export_dir]")
	}

	databaseURL := os.Args[1]

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	if len(os.Args) < 3 {
		return
	}
	exportDir := os.Args[2]
	log.Printf("Importing portfolio exports from %s", exportDir)

	repo := postgres.NewPortfolioRepository(db)

	files, err := findExportFiles(exportDir)
	if err != nil {
		log.Fatalf("Failed to find export files: %v", err)
	}
	log.Printf("Found %d export files to import", len(files))

	imported := 0
	skipped := 0
	for _, file := range files {
		if err := importFile(ctx, repo, file); err != nil {
			log.Printf("Failed to import %s: %v", filepath.Base(file), err)
			skipped++
			continue
		}
		imported++
		log.Printf("Imported portfolio from %s", filepath.Base(file))
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

// importFile stores one translator export. The portfolio id is derived
// from the file path so re-running the import is a no-op.
func importFile(ctx context.Context, repo ports.PortfolioRepository, file string) error {
	doc, err := loadDocument(file)
	if err != nil {
		return err
	}

	// Re-translating proves the export is consistent before it is stored
	tr, err := translator.Import(doc)
	if err != nil {
		return err
	}
	if got := tr.Hash().String(); doc.Hash != "" && got != doc.Hash {
		log.Printf("Warning: %s hash %s does not match re-translated %s", filepath.Base(file), doc.Hash, got)
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	p, err := portfolio.New(name, doc.Projects, doc.Criteria, doc.Epsilon)
	if err != nil {
		return err
	}
	p.ID = core.PortfolioID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(file)).String())
	p.Description = "imported from " + filepath.Base(file)

	if _, err := repo.GetPortfolio(ctx, p.ID); err == nil {
		log.Printf("Portfolio %s already imported, appending missing evaluations", p.ID)
	} else if core.IsNotFoundError(err) {
		if err := repo.CreatePortfolio(ctx, p); err != nil {
			return err
		}
	} else {
		return err
	}

	return repo.AppendRecords(ctx, p.ID, doc.Evaluations)
}

func findExportFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func loadDocument(filePath string) (translator.Document, error) {
	var doc translator.Document
	data, err := os.ReadFile(filePath)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(data, &doc)
	return doc, err
}
