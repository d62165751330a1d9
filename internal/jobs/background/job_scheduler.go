package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"indumart/internal/repositories"
	"indumart/internal/services"
)

const stalePendingAge = 48 * time.Hour

// JobScheduler manages periodic maintenance jobs. Nothing here touches the
// synchronous RFQ flow.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	orderRepo  repositories.OrderRepository
	productSvc services.ProductServiceInterface
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(orderRepo repositories.OrderRepository, productSvc services.ProductServiceInterface) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		orderRepo:  orderRepo,
		productSvc: productSvc,
	}
	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Stale pending RFQ reminder - every 6 hours
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.remindStalePendingOrders, context.Background()),
		gocron.WithName("stale-pending-orders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stale pending orders job: %v", err)
	}

	// Product cache warm - every 15 minutes
	_, err = js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.warmProductCache, context.Background()),
		gocron.WithName("product-cache-warm"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create product cache warm job: %v", err)
	}
}

// remindStalePendingOrders logs how many RFQs have sat in pending beyond the
// follow-up window. It mutates nothing; quoting is an admin decision.
func (js *JobScheduler) remindStalePendingOrders(ctx context.Context) {
	cutoff := time.Now().Add(-stalePendingAge)
	count, err := js.orderRepo.CountPendingOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("WARN: stale pending order count failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("%d pending RFQs older than %s await an admin quote", count, stalePendingAge)
	}
}

func (js *JobScheduler) warmProductCache(ctx context.Context) {
	warmed, err := js.productSvc.WarmCache(ctx, time.Now().Add(-24*time.Hour), 100)
	if err != nil {
		log.Printf("WARN: product cache warm failed: %v", err)
		return
	}
	log.Printf("warmed %d recently updated products into cache", warmed)
}
