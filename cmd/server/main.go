package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caretransit/internal/config"
	"caretransit/internal/controllers"
	"caretransit/internal/jobs"
	"caretransit/internal/logger"
	"caretransit/internal/middleware"
	"caretransit/internal/repository"
	"caretransit/internal/routes"
	"caretransit/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()
	db := config.GetDB()

	// Stores
	driverStore := repository.NewDriverStore(db)
	vehicleStore := repository.NewVehicleStore(db)
	childStore := repository.NewChildStore(db)
	scheduleStore := repository.NewScheduleStore(db)
	routeStore := repository.NewRouteStore(db)
	stopStore := repository.NewStopStore(db)
	seriesStore := repository.NewSeriesStore(db)
	seriesScheduleStore := repository.NewSeriesScheduleStore(db)
	occurrenceStore := repository.NewOccurrenceStore(db)
	companyStore := repository.NewCompanyStore(db)
	stopUOW := repository.NewStopUnitOfWork(db)

	// Services
	pipeline := services.NewRouteValidationPipeline(driverStore, vehicleStore, childStore, scheduleStore, routeStore)
	coordinator := services.NewInsertionCoordinator(stopUOW)
	routeService := services.NewRouteService(pipeline, routeStore, stopStore)
	resolver := services.NewSeriesConflictResolver(routeStore, seriesStore)
	seriesService := services.NewSeriesService(
		seriesStore, seriesScheduleStore, occurrenceStore,
		routeStore, childStore, scheduleStore,
		resolver, coordinator,
	)
	materializer := services.NewMaterializationService(
		seriesStore, seriesScheduleStore, occurrenceStore,
		routeStore, scheduleStore,
	)

	// Background materialization of upcoming series occurrences
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	jobs.NewMaterializer(materializer, companyStore, 6*time.Hour, 4*7*24*time.Hour).Start(jobCtx)

	// HTTP
	r := routes.SetupRouter(routes.Controllers{
		Routes: controllers.NewRouteController(routeService, coordinator),
		Series: controllers.NewSeriesController(seriesService, materializer),
	})
	handler := middleware.EnableCORS(r)

	srv := &http.Server{Addr: "0.0.0.0:8080", Handler: handler}
	go func() {
		log.Println("🚀 Server running at :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopJobs()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
