package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gramsetu/loan-advisor/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the assessment and chat
// tables. The product table needs pgvector and is exercised against postgres
// only.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.LoanAssessment{}, &model.ChatSession{}, &model.ChatMessage{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestAssessmentRepository_CreateAssignsID(t *testing.T) {
	repo := NewAssessmentRepository(openTestDB(t))

	record := &model.LoanAssessment{
		UserID:              "user-1",
		MonthlyIncome:       50000,
		EmploymentType:      "salaried",
		ExistingLoans:       "[]",
		LoanAmountRequested: 500000,
		EligibilityScore:    100,
		RecommendedAmount:   500000,
		RiskLevel:           "low",
		AssessmentResult:    "{}",
		CalculatedAt:        time.Now().UTC(),
	}
	if err := repo.CreateAssessment(context.Background(), record); err != nil {
		t.Fatalf("CreateAssessment err: %v", err)
	}
	if record.ID == uuid.Nil {
		t.Error("ID not assigned on create")
	}

	found, err := repo.FindByID(context.Background(), record.ID.String())
	if err != nil {
		t.Fatalf("FindByID err: %v", err)
	}
	if found.UserID != "user-1" || found.EligibilityScore != 100 {
		t.Errorf("found = %+v", found)
	}
}

func TestAssessmentRepository_FindByUserPaginatesNewestFirst(t *testing.T) {
	repo := NewAssessmentRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		record := &model.LoanAssessment{
			UserID:           "user-1",
			ExistingLoans:    "[]",
			AssessmentResult: "{}",
			RiskLevel:        "medium",
			LoanPurpose:      fmt.Sprintf("purpose-%d", i),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateAssessment(ctx, record); err != nil {
			t.Fatalf("CreateAssessment err: %v", err)
		}
	}
	// a different user's records must not leak in
	other := &model.LoanAssessment{UserID: "user-2", ExistingLoans: "[]", AssessmentResult: "{}"}
	if err := repo.CreateAssessment(ctx, other); err != nil {
		t.Fatalf("CreateAssessment err: %v", err)
	}

	page1, total, err := repo.FindByUser(ctx, "user-1", 1, 5)
	if err != nil {
		t.Fatalf("FindByUser err: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(page1) != 5 {
		t.Fatalf("len(page1) = %d, want 5", len(page1))
	}
	if page1[0].LoanPurpose != "purpose-6" {
		t.Errorf("first item = %q, want the newest record", page1[0].LoanPurpose)
	}

	page2, _, err := repo.FindByUser(ctx, "user-1", 2, 5)
	if err != nil {
		t.Fatalf("FindByUser err: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("len(page2) = %d, want 2", len(page2))
	}
}

func TestAssessmentRepository_FindByUserDefaultsBadPaging(t *testing.T) {
	repo := NewAssessmentRepository(openTestDB(t))
	ctx := context.Background()

	record := &model.LoanAssessment{UserID: "user-1", ExistingLoans: "[]", AssessmentResult: "{}"}
	if err := repo.CreateAssessment(ctx, record); err != nil {
		t.Fatalf("CreateAssessment err: %v", err)
	}

	items, total, err := repo.FindByUser(ctx, "user-1", -3, 0)
	if err != nil {
		t.Fatalf("FindByUser err: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("total = %d, len = %d, want 1 and 1", total, len(items))
	}
}
