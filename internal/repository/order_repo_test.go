package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func TestMarkPaidWinsTransition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	won, err := repo.MarkPaid(context.Background(), "1001", "buyer@example.com", "{}")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !won {
		t.Fatal("expected the transition to be won")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkPaidLosesWhenAlreadyPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	won, err := repo.MarkPaid(context.Background(), "1001", "buyer@example.com", "{}")
	if err != nil {
		t.Fatalf("mark paid errored: %v", err)
	}
	if won {
		t.Fatal("zero rows affected must report a lost transition")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByOrderNoMissingIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_no"}))

	order, err := repo.FindByOrderNo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("missing order must not error: %v", err)
	}
	if order != nil {
		t.Fatal("expected nil for a missing order")
	}
}

func TestAttachSessionGuardsOnEmptySessionRef(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders` SET .* WHERE order_no = \\? AND \\(session_ref = '' OR session_ref IS NULL\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.AttachSession(context.Background(), "1001", "cs_1", "{}"); err != nil {
		t.Fatalf("attach session failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestExpireStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders` SET .* WHERE status = \\? AND created_at < \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	count, err := repo.ExpireStale(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("expire stale failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}
