package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipfire/config"
	"shipfire/internal/database"
	"shipfire/internal/repository"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// The sweeper expires created orders that never received a capture. It runs
// as its own process so several API replicas can share one schedule; a redis
// lock keeps concurrent replicas from double-sweeping.
func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	orderRepo := repository.NewOrderRepository(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rs := redsync.New(goredis.NewPool(rdb))

	scheduler := cron.New(cron.WithSeconds())
	_, err = scheduler.AddFunc(cfg.Sweeper.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		mutex := rs.NewMutex(
			cfg.Sweeper.LockKey,
			redsync.WithExpiry(cfg.Sweeper.LockTTL),
			redsync.WithTries(1),
		)
		if err := mutex.LockContext(ctx); err != nil {
			log.Printf("[CRON] sweep skipped: lock busy or already processing")
			return
		}
		defer func() {
			if _, err := mutex.UnlockContext(ctx); err != nil {
				log.Printf("[CRON] failed to release sweep lock: %v", err)
			}
		}()

		log.Println("[CRON] Starting stale order sweep...")
		cutoff := time.Now().Add(-cfg.Sweeper.OrderTTL)
		count, err := orderRepo.ExpireStale(ctx, cutoff)
		if err != nil {
			log.Printf("[CRON] Error expiring stale orders: %v", err)
			return
		}
		log.Printf("[CRON] Expired %d stale orders", count)
	})
	if err != nil {
		log.Fatalf("add sweep job: %v", err)
	}

	scheduler.Start()
	log.Printf("sweeper running, schedule %q", cfg.Sweeper.Spec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	<-scheduler.Stop().Done()
}
