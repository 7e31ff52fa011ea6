package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
)

func TestGetChallengeDay_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetChallengeDay(context.Background(), 4)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetChallengeDay() error = %v, want ErrNotFound", err)
	}
}

func TestPutChallengeDay_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	original := &model.ChallengeDay{
		Day:                2,
		ContractName:       "SaveMyName.sol",
		Week:               "Week 1: Solidity Fundamentals",
		ExampleApplication: "Store and retrieve a name.",
		ConceptsTaught:     []string{"State variables (string, bool)", "Storage and retrieval"},
		LogicalProgression: "Introduces data types.",
		YouTubeLink:        "https://youtu.be/abc",
		SolutionLink:       "https://github.com/org/solutions/day2",
	}
	if err := db.PutChallengeDay(ctx, original); err != nil {
		t.Fatalf("PutChallengeDay() error = %v", err)
	}

	found, err := db.GetChallengeDay(ctx, 2)
	if err != nil {
		t.Fatalf("GetChallengeDay() error = %v", err)
	}
	if !reflect.DeepEqual(found, original) {
		t.Errorf("GetChallengeDay() = %+v, want %+v", found, original)
	}
}

func TestPutChallengeDay_NilConcepts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.PutChallengeDay(ctx, &model.ChallengeDay{Day: 9, Title: "Day 9: Vaults", Description: "Build a vault."}); err != nil {
		t.Fatalf("PutChallengeDay() error = %v", err)
	}

	found, err := db.GetChallengeDay(ctx, 9)
	if err != nil {
		t.Fatalf("GetChallengeDay() error = %v", err)
	}
	if len(found.ConceptsTaught) != 0 {
		t.Errorf("ConceptsTaught = %v, want empty", found.ConceptsTaught)
	}
	if found.Title != "Day 9: Vaults" {
		t.Errorf("Title = %q, want %q", found.Title, "Day 9: Vaults")
	}
}

func TestPutChallengeDay_FirstWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.PutChallengeDay(ctx, &model.ChallengeDay{Day: 1, ContractName: "ClickCounter.sol"}); err != nil {
		t.Fatalf("first PutChallengeDay() error = %v", err)
	}
	if err := db.PutChallengeDay(ctx, &model.ChallengeDay{Day: 1, ContractName: "Other.sol"}); err != nil {
		t.Fatalf("second PutChallengeDay() error = %v", err)
	}

	found, err := db.GetChallengeDay(ctx, 1)
	if err != nil {
		t.Fatalf("GetChallengeDay() error = %v", err)
	}
	if found.ContractName != "ClickCounter.sol" {
		t.Errorf("ContractName = %q, want first write %q", found.ContractName, "ClickCounter.sol")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
