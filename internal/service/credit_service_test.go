package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shipfire/internal/domain"
	"shipfire/internal/models"
)

func TestCreditBalanceIgnoresExpiredRows(t *testing.T) {
	credits := &fakeCreditStore{}
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)
	credits.rows = []models.Credit{
		{UserUUID: "user-1", Credits: 50, ExpiredAt: &future},
		{UserUUID: "user-1", Credits: 30, ExpiredAt: &past},
		{UserUUID: "user-1", Credits: 10}, // never expires
		{UserUUID: "user-2", Credits: 99},
	}
	svc := NewCreditService(credits)

	balance, err := svc.Balance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 60 {
		t.Fatalf("balance = %d, want 60", balance)
	}
}

func TestConsumeDebitsWithNegativeRow(t *testing.T) {
	credits := &fakeCreditStore{rows: []models.Credit{{UserUUID: "user-1", Credits: 10}}}
	svc := NewCreditService(credits)

	left, err := svc.Consume(context.Background(), "user-1", 3, domain.CreditTransImageGen)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if left != 7 {
		t.Fatalf("left = %d, want 7", left)
	}
	rows, _ := credits.ListByUser(context.Background(), "user-1", 10)
	if len(rows) != 2 || rows[1].Credits != -3 || rows[1].TransType != domain.CreditTransImageGen {
		t.Fatalf("debit row wrong: %+v", rows)
	}
}

func TestConsumeInsufficientBalance(t *testing.T) {
	credits := &fakeCreditStore{rows: []models.Credit{{UserUUID: "user-1", Credits: 2}}}
	svc := NewCreditService(credits)

	left, err := svc.Consume(context.Background(), "user-1", 5, domain.CreditTransImageGen)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if left != 2 {
		t.Fatalf("left = %d, want the current balance 2", left)
	}
	rows, _ := credits.ListByUser(context.Background(), "user-1", 10)
	if len(rows) != 1 {
		t.Fatal("no debit row on insufficient balance")
	}
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	svc := NewCreditService(&fakeCreditStore{})
	if err := svc.Grant(context.Background(), "user-1", 0); err == nil {
		t.Fatal("expected error for zero grant")
	}
	if err := svc.Grant(context.Background(), "user-1", -5); err == nil {
		t.Fatal("expected error for negative grant")
	}
}
