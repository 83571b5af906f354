package service

import (
	"context"
	"errors"

	"shipfire/internal/domain"
	"shipfire/internal/models"

	"github.com/google/uuid"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

type CreditService struct {
	credits CreditStore
}

func NewCreditService(credits CreditStore) *CreditService {
	return &CreditService{credits: credits}
}

func (s *CreditService) Balance(ctx context.Context, userUUID string) (int, error) {
	return s.credits.SumValid(ctx, userUUID)
}

func (s *CreditService) History(ctx context.Context, userUUID string, limit int) ([]models.Credit, error) {
	return s.credits.ListByUser(ctx, userUUID, limit)
}

// Consume debits cost credits for transType (e.g. image generation), failing
// with ErrInsufficientCredits when the balance does not cover it.
func (s *CreditService) Consume(ctx context.Context, userUUID string, cost int, transType string) (int, error) {
	if cost <= 0 {
		cost = 1
	}
	balance, err := s.credits.SumValid(ctx, userUUID)
	if err != nil {
		return 0, err
	}
	if balance < cost {
		return balance, ErrInsufficientCredits
	}
	row := &models.Credit{
		TransNo:   uuid.NewString(),
		UserUUID:  userUUID,
		TransType: transType,
		Credits:   -cost,
	}
	if err := s.credits.Insert(ctx, row); err != nil {
		return balance, err
	}
	return balance - cost, nil
}

// Grant adds credits outside the order flow (admin adjustments).
func (s *CreditService) Grant(ctx context.Context, userUUID string, amount int) error {
	if amount <= 0 {
		return errors.New("grant amount must be positive")
	}
	return s.credits.Insert(ctx, &models.Credit{
		TransNo:   uuid.NewString(),
		UserUUID:  userUUID,
		TransType: domain.CreditTransSystemAdd,
		Credits:   amount,
	})
}
