package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/poiesic/nlqengine/storage/sqlite"
	"github.com/urfave/cli/v2"
)

// Employee is the sample table created by the seed command.
type Employee struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Department string `gorm:"not null;index"`
}

var employees = []Employee{
	{Name: "Alice", Department: "Engineering"},
	{Name: "Bob", Department: "Sales"},
	{Name: "Carol", Department: "Engineering"},
	{Name: "Dave", Department: "Marketing"},
}

const handbook = `Alice works in Engineering and leads the platform team.

Bob works in Sales and manages the northern region accounts.

Carol joined Engineering last spring and maintains the data pipeline.

Dave runs Marketing campaigns and coordinates product launches.
`

func seedCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	db, err := sqlite.OpenGorm(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&Employee{}); err != nil {
		return fmt.Errorf("auto-migrate employees: %w", err)
	}

	var count int64
	if err := db.Model(&Employee{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if count == 0 {
		rows := slices.Clone(employees)
		if err := db.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert employees: %w", err)
		}
		count = int64(len(employees))
	}

	docsDir := c.String("documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	docPath := filepath.Join(docsDir, "handbook.md")
	if err := os.WriteFile(docPath, []byte(handbook), 0o644); err != nil {
		return fmt.Errorf("failed to write sample document: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s (%d employees)\n", dbPath, count)
	fmt.Fprintf(c.App.ErrWriter, "Documents: %s\n", docsDir)
	fmt.Fprintf(c.App.ErrWriter, "\nDATABASE_URL=sqlite:///%s\n", dbPath)
	return nil
}
