package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/config"
	"hospital-billing-server/internal/handlers"
	"hospital-billing-server/internal/middleware"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Billing services share one store
	billingStore := store.New(db)
	ledgerService := billing.NewLedgerService(billingStore)
	paymentService := billing.NewPaymentService(billingStore)
	claimService := billing.NewClaimService(billingStore)
	reportService := billing.NewReportService(billingStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	hmoHandler := handlers.NewHMOHandler(db)
	chargeHandler := handlers.NewChargeHandler(db)
	patientHandler := handlers.NewPatientHandler(db, paymentService)
	encounterHandler := handlers.NewEncounterHandler(db)
	encounterChargeHandler := handlers.NewEncounterChargeHandler(ledgerService)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService)
	claimHandler := handlers.NewClaimHandler(claimService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Staff account management (admin only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.DELETE("/:id", userHandler.DeactivateUser)
		}

		// Insurer directory (admin manages, everyone reads)
		hmoRoutes := private.Group("/hmos")
		{
			hmoRoutes.GET("", hmoHandler.GetHMOs)
			hmoRoutes.GET("/:id", hmoHandler.GetHMOByID)

			hmoAdmin := hmoRoutes.Group("")
			hmoAdmin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				hmoAdmin.POST("", hmoHandler.CreateHMO)
				hmoAdmin.PUT("/:id", hmoHandler.UpdateHMO)
				hmoAdmin.DELETE("/:id", hmoHandler.DeactivateHMO)
			}
		}

		// Master price list (admin manages, everyone reads)
		chargeRoutes := private.Group("/charges")
		{
			chargeRoutes.GET("", chargeHandler.GetCharges)
			chargeRoutes.GET("/:id", chargeHandler.GetChargeByID)

			chargeAdmin := chargeRoutes.Group("")
			chargeAdmin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				chargeAdmin.POST("", chargeHandler.CreateCharge)
				chargeAdmin.PUT("/:id", chargeHandler.UpdateCharge)
				chargeAdmin.DELETE("/:id", chargeHandler.DeactivateCharge)
			}
		}

		// Patient registration and deposit wallet
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)

			// Deposit wallet is cashier territory
			patientRoutes.POST("/:id/deposit",
				middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleAdmin),
				patientHandler.TopUpDeposit)
			patientRoutes.GET("/:id/deposits", patientHandler.GetDepositHistory)
		}

		// Encounters and the charge ledger
		encounterRoutes := private.Group("/encounters")
		{
			encounterRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse, models.RoleAdmin), encounterHandler.CreateEncounter)
			encounterRoutes.GET("", encounterHandler.GetEncounters)
			encounterRoutes.GET("/:id", encounterHandler.GetEncounterByID)

			encounterRoutes.POST("/:id/charges", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse, models.RoleAdmin), encounterChargeHandler.AddCharge)
			encounterRoutes.GET("/:id/charges", encounterChargeHandler.GetCharges)
		}
		chargeLineRoutes := private.Group("/encounter-charges")
		{
			chargeLineRoutes.PUT("/:id", encounterChargeHandler.UpdateCharge)
			chargeLineRoutes.POST("/:id/cancel", encounterChargeHandler.CancelCharge)
			chargeLineRoutes.DELETE("/:id", encounterChargeHandler.DeleteCharge)
		}

		// Payments (cashier), reversal (admin)
		paymentRoutes := private.Group("/payments")
		{
			paymentRoutes.POST("/collect", middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleAdmin), paymentHandler.Collect)
			paymentRoutes.POST("/:receiptId/reverse", middleware.RoleAuthMiddleware(models.RoleAdmin), paymentHandler.Reverse)
			paymentRoutes.POST("/validate", paymentHandler.Validate) // Any department can validate
		}
		receiptRoutes := private.Group("/receipts")
		{
			receiptRoutes.GET("", paymentHandler.GetReceipts)
			receiptRoutes.GET("/:id", paymentHandler.GetReceiptByID)
		}

		// Claims (cashier/admin)
		claimRoutes := private.Group("/claims")
		claimRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCashier, models.RoleAdmin))
		{
			claimRoutes.POST("/generate/:encounterId", claimHandler.Generate)
			claimRoutes.PUT("/:id/status", claimHandler.SetStatus)
			claimRoutes.GET("", claimHandler.GetClaims)
			claimRoutes.GET("/:id", claimHandler.GetClaimByID)
		}

		// Reports are read-only
		reportRoutes := private.Group("/reports")
		{
			reportRoutes.GET("/revenue", reportHandler.Revenue)
			reportRoutes.GET("/pending-hmo", reportHandler.PendingHMO)
			reportRoutes.GET("/dashboard", reportHandler.Dashboard)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
