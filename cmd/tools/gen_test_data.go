package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/jung-kurt/gofpdf"
	"github.com/mama165/sdk-go/logs"

	"campushub/auth"
	"campushub/domain"
	"campushub/internal"
	"campushub/repositories"
)

// Seeds a local database with a small school: one admin, two teachers, two
// parents, their students, and a couple of conversations. Also generates a
// sample PDF so /file has something real to share. Run it once before
// starting the server and the interactive clients.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	directory := repositories.NewDirectoryRepository(db, logger)
	conversations := repositories.NewConversationRepository(db, logger)

	const orgID = "org-demo"

	users := []domain.User{
		{ID: "admin-ada", OrgID: orgID, Role: domain.RoleAdmin, Active: true},
		{ID: "teacher-tom", OrgID: orgID, Role: domain.RoleTeacher, Active: true},
		{ID: "teacher-tess", OrgID: orgID, Role: domain.RoleTeacher, Active: true},
		{ID: "parent-pia", OrgID: orgID, Role: domain.RoleParent, Active: true},
		{ID: "parent-paul", OrgID: orgID, Role: domain.RoleParent, Active: true},
	}
	for _, u := range users {
		if err := directory.PutUser(u); err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.ID, err)
		}
	}

	students := []domain.Student{
		{ID: "student-sam", OrgID: orgID, GuardianID: "parent-pia", Active: true},
		{ID: "student-sue", OrgID: orgID, GuardianID: "parent-pia", Active: true},
		{ID: "student-sol", OrgID: orgID, GuardianID: "parent-paul", Active: true},
	}
	for _, s := range students {
		if err := directory.PutStudent(s); err != nil {
			log.Fatalf("Failed to seed student %s: %v", s.ID, err)
		}
	}

	convs := []domain.Conversation{
		{
			ID: "conv-tom-pia", OrgID: orgID, Type: domain.ConversationDirect,
			Participants: []string{"teacher-tom", "parent-pia"},
			CreatedAt:    time.Now().UTC(),
		},
		{
			ID: "conv-staff-room", OrgID: orgID, Type: domain.ConversationGroup,
			Participants: []string{"admin-ada", "teacher-tom", "teacher-tess"},
			CreatedAt:    time.Now().UTC(),
		},
	}
	for _, c := range convs {
		if err := conversations.Put(c); err != nil {
			log.Fatalf("Failed to seed conversation %s: %v", c.ID, err)
		}
	}

	outputDir := "./test_data"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", outputDir, err)
	}
	pdfPath := filepath.Join(outputDir, "field_trip_consent.pdf")
	genPDF(pdfPath)

	gate := auth.NewGate(config.JWTSecret)
	fmt.Println("Seeded", orgID, "- tokens valid 24h:")
	for _, u := range users {
		token, err := gate.Mint(domain.Claim{UserID: u.ID, Role: u.Role, OrgID: orgID}, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token for %s: %v", u.ID, err)
		}
		fmt.Printf("  %-12s %s\n", u.ID, token)
	}
	fmt.Println("Sample attachment:", pdfPath)
}

// genPDF writes a small consent form so the file message path has a real
// document to point at.
func genPDF(path string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(40, 20, "Field Trip Consent Form")
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 12)
	content := "Please sign and return this form before Friday.\n" +
		"The class will visit the natural history museum; a packed lunch is required."
	pdf.MultiCell(0, 10, content, "", "", false)

	if err := pdf.OutputFileAndClose(path); err != nil {
		log.Fatalf("Failed to write PDF: %v", err)
	}
}
