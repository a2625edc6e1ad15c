package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/univ-is/academic-records-api/api/swagger"
	"github.com/univ-is/academic-records-api/internal/handler"
	"github.com/univ-is/academic-records-api/internal/middleware"
	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/repository"
	"github.com/univ-is/academic-records-api/internal/service"
	"github.com/univ-is/academic-records-api/pkg/cache"
	"github.com/univ-is/academic-records-api/pkg/config"
	"github.com/univ-is/academic-records-api/pkg/database"
	"github.com/univ-is/academic-records-api/pkg/logger"
	corsmiddleware "github.com/univ-is/academic-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/univ-is/academic-records-api/pkg/middleware/requestid"
)

// @title Academic Records API
// @version 1.0.0
// @description University academic record lifecycle: exam scheduling, enrollment, registration and grading
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	programRepo := repository.NewStudyProgramRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentEnrollmentRepo := repository.NewStudentEnrollmentRepository(db)
	courseEnrollmentRepo := repository.NewCourseEnrollmentRepository(db)
	assignmentRepo := repository.NewProfessorAssignmentRepository(db)
	periodRepo := repository.NewExamPeriodRepository(db)
	examRepo := repository.NewExamRepository(db)
	registrationRepo := repository.NewExamRegistrationRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.AvailableExamTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	programSvc := service.NewProgramService(programRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, programRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(studentEnrollmentRepo, courseEnrollmentRepo, programRepo, subjectRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, subjectRepo, validate, logr)
	periodSvc := service.NewExamPeriodService(periodRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, subjectRepo, periodRepo, registrationRepo, cacheSvc, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, examRepo, courseEnrollmentRepo, cacheSvc, validate, logr)
	gradingSvc := service.NewGradingService(gradeRepo, registrationRepo, assignmentRepo, examRepo, cfg.Academic.GradingWindowDays, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	programHandler := handler.NewStudyProgramHandler(programSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	periodHandler := handler.NewExamPeriodHandler(periodSvc)
	examHandler := handler.NewExamHandler(examSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc, metricsSvc)
	gradingHandler := handler.NewGradingHandler(gradingSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		start := time.Now()
		err := db.PingContext(c.Request.Context())
		metricsSvc.ObserveDBQuery("ping", time.Since(start))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.GET("/system/metrics", metricsHandler.Snapshot)

		staff := middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar)

		authed.GET("/programs", programHandler.List)
		authed.GET("/programs/:id", programHandler.Get)
		authed.POST("/programs", staff, programHandler.Create)

		authed.GET("/subjects", subjectHandler.List)
		authed.GET("/subjects/:id", subjectHandler.Get)
		authed.POST("/subjects", staff, subjectHandler.Create)
		authed.PUT("/subjects/:id", staff, subjectHandler.Update)

		authed.GET("/enrollments/programs", staff, enrollmentHandler.ListPrograms)
		authed.POST("/enrollments/programs", staff, enrollmentHandler.EnrollInProgram)
		authed.PATCH("/enrollments/programs/:id/status", staff, enrollmentHandler.UpdateStatus)
		authed.POST("/enrollments/programs/:id/advance", staff, enrollmentHandler.AdvanceYear)
		authed.POST("/enrollments/courses", staff, enrollmentHandler.EnrollInCourse)
		authed.GET("/enrollments/courses/:studentId", middleware.RBAC("ADMIN", "REGISTRAR", "SELF"), enrollmentHandler.ListCourses)
		authed.DELETE("/enrollments/courses/:studentId/:subjectId", staff, enrollmentHandler.DropCourse)

		authed.GET("/assignments/:professorId", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessor), assignmentHandler.ListByProfessor)
		authed.POST("/assignments", staff, assignmentHandler.Assign)
		authed.DELETE("/assignments/:professorId/:id", staff, assignmentHandler.Unassign)

		authed.GET("/exam-periods", periodHandler.List)
		authed.GET("/exam-periods/active", periodHandler.Active)
		authed.GET("/exam-periods/:id", periodHandler.Get)
		authed.POST("/exam-periods", staff, periodHandler.Create)

		authed.GET("/exams", examHandler.ListByPeriod)
		authed.GET("/exams/:id", examHandler.Get)
		authed.POST("/exams", staff, examHandler.Create)
		authed.PATCH("/exams/:id/status", staff, examHandler.Transition)

		selfOrStaff := middleware.RBAC("ADMIN", "REGISTRAR", "SELF")
		authed.POST("/registrations", middleware.RequireRoles(models.RoleStudent, models.RoleRegistrar), registrationHandler.Register)
		authed.GET("/registrations/:studentId", selfOrStaff, registrationHandler.ListRegistered)
		authed.GET("/registrations/:studentId/available", selfOrStaff, registrationHandler.ListAvailable)

		authed.POST("/grades", middleware.RequireRoles(models.RoleProfessor), gradingHandler.GradeExam)
		authed.GET("/grades/:studentId/:examId/state", middleware.RBAC("ADMIN", "PROFESSOR", "SELF"), gradingHandler.AttemptState)
		authed.GET("/transcripts/:studentId", middleware.RBAC("ADMIN", "REGISTRAR", "PROFESSOR", "SELF"), gradingHandler.Transcript)
		authed.GET("/transcripts/:studentId/export", middleware.RBAC("ADMIN", "REGISTRAR", "SELF"), gradingHandler.ExportTranscript)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
