package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	appHTTP "github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/cron"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/repository/postgresql"
	attendanceService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/attendance"
	authService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/auth"
	correctionService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/correction"
	leaveService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/leave"
	reportService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/report"
	userService "github.com/shiftlog-hq/shiftlog-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	accessTTL, err := time.ParseDuration(cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Invalid access token expiration: ", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.JWT.RefreshExpiration)
	if err != nil {
		log.Fatal("Invalid refresh token expiration: ", err)
	}
	tokens := jwtpkg.NewManager(cfg.JWT.Secret, accessTTL, refreshTTL)

	userRepo := postgresql.NewUserRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	recordRepo := postgresql.NewRecordRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	authSvc := authService.NewAuthService(userRepo, refreshTokenRepo, tokens)
	userSvc := userService.NewUserService(userRepo)
	attendanceSvc := attendanceService.NewAttendanceService(db, sessionRepo, recordRepo)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, userRepo, cfg.Review)
	correctionSvc := correctionService.NewCorrectionService(db, correctionRepo, recordRepo, userRepo, cfg.Review)
	reportSvc := reportService.NewReportService(reportRepo)

	jobs, err := cron.NewAttendanceJobs(attendanceSvc, correctionSvc, cfg.AutoClockOut, cfg.Review)
	if err != nil {
		log.Fatal("Failed to initialize cron jobs: ", err)
	}
	scheduler := cron.NewScheduler()
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, tokens, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Correction: appHTTP.NewCorrectionHandler(correctionSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error: ", err)
	}
}
