package server

import (
	"time"

	"github.com/vgridasov/WebRegLog/internal/access"
	"github.com/vgridasov/WebRegLog/internal/attachment"
	"github.com/vgridasov/WebRegLog/internal/auth"
	"github.com/vgridasov/WebRegLog/internal/journal"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/record"
	"github.com/vgridasov/WebRegLog/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "WebRegLog API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/register", auth.RegisterHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Get("/google/login", auth.GoogleLogin)
	authGroup.Get("/google/callback", auth.GoogleCallback)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.JWTProtected(), auth.LogoutHandler)
	authGroup.Get("/profile", auth.JWTProtected(), auth.ProfileHandler)

	// ==========================================
	// USER MANAGEMENT (Admin only)
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected())
	userGroup.Use(auth.RoleProtected(models.RoleAdmin))
	userGroup.Post("/", user.CreateUserHandler)
	userGroup.Get("/", user.ListUsersHandler)
	userGroup.Get("/available", user.AvailableUsersHandler)
	userGroup.Get("/:id", user.GetUserHandler)
	userGroup.Put("/:id", user.UpdateUserHandler)
	userGroup.Delete("/:id", user.DeleteUserHandler)

	// ==========================================
	// JOURNAL MANAGEMENT
	// ==========================================
	journalGroup := app.Group("/journals")
	journalGroup.Use(auth.JWTProtected())

	// Schema and ACL changes are admin-only; listing and reading are
	// filtered by journal membership.
	journalGroup.Post("/",
		auth.RoleProtected(models.RoleAdmin),
		journal.CreateJournalHandler)
	journalGroup.Get("/", journal.ListJournalsHandler)
	journalGroup.Get("/:journal_id", journal.GetJournalHandler)
	journalGroup.Put("/:journal_id",
		auth.RoleProtected(models.RoleAdmin),
		journal.UpdateJournalHandler)
	journalGroup.Delete("/:journal_id",
		auth.RoleProtected(models.RoleAdmin),
		journal.DeleteJournalHandler)

	// ==========================================
	// RECORDS
	// ==========================================
	recordGroup := app.Group("/records")
	recordGroup.Use(auth.JWTProtected())

	recordGroup.Post("/",
		access.JournalProtected(access.CapabilityWrite),
		record.CreateRecordHandler)
	recordGroup.Get("/journal/:journal_id",
		access.JournalProtected(access.CapabilityRead),
		record.ListRecordsHandler)
	recordGroup.Get("/export/:journal_id",
		access.JournalProtected(access.CapabilityAnalyze),
		record.ExportRecordsHandler)
	recordGroup.Get("/:record_id", record.GetRecordHandler)
	recordGroup.Put("/:record_id", record.UpdateRecordHandler)
	recordGroup.Delete("/:record_id",
		auth.RoleProtected(models.RoleAdmin),
		record.DeleteRecordHandler)

	// ==========================================
	// ATTACHMENTS (values for file-type fields)
	// ==========================================
	attachmentGroup := app.Group("/attachments")
	attachmentGroup.Use(auth.JWTProtected())
	attachmentGroup.Post("/upload", attachment.UploadAttachmentHandler)
}
