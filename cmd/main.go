package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"alphastore/appointments"
	"alphastore/blog"
	"alphastore/cart"
	"alphastore/config"
	"alphastore/controllers"
	"alphastore/database"
	"alphastore/faq"
	"alphastore/finance"
	"alphastore/health"
	"alphastore/inquiries"
	"alphastore/inventory"
	"alphastore/middleware"
	"alphastore/orders"
	"alphastore/pricing"
	"alphastore/reviews"
	"alphastore/routes"
	"alphastore/uploads"
	"alphastore/users"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	lg, err := newLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lg, cfg); err != nil {
		lg.Fatal("Run failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run wires every dependency, serves HTTP and shuts down gracefully once
// ctx is cancelled.
func run(ctx context.Context, lg *zap.Logger, cfg *config.Config) error {
	lg.Info("Initializing", zap.String("port", cfg.Port), zap.String("db", cfg.DBName))

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return errors.Wrap(err, "connect mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			lg.Warn("Mongo disconnect", zap.Error(err))
		}
	}()

	colls := database.InitCollections(db)
	if err := colls.EnsureIndexes(ctx); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}
	stores := database.NewStores(colls)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return errors.Wrap(err, "create upload dir")
	}
	files := uploads.New(cfg.UploadDir)

	hc := health.New(lg.Named("health"))
	hc.AddReadinessCheck("mongo", 5*time.Second, health.MongoCheck(client))
	hc.AddReadinessCheck("uploads", time.Second, health.DirCheck(cfg.UploadDir))
	hc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCheck(10000))
	hc.Start(ctx, 10*time.Second)

	// Domain services.
	calc := pricing.New(cfg.TaxRate)
	catalog := database.Catalog{Products: stores.Products, PreBuilds: stores.PreBuilds}
	carts := cart.NewService(stores.Carts, catalog, calc)
	orderSvc := orders.NewService(orders.Deps{
		Repo:      stores.Orders,
		Catalog:   catalog,
		Carts:     carts,
		Taxes:     stores.Taxes,
		Stock:     inventory.NewAdjuster(stores.Products, lg.Named("inventory")),
		Files:     files,
		Addresses: stores.Users,
		Calc:      calc,
		Logger:    lg.Named("orders"),
	})
	financeSvc := finance.NewService(finance.Deps{
		Taxes:        stores.Taxes,
		Invoices:     stores.Invoices,
		Transactions: stores.Transactions,
		PettyCash:    stores.PettyCash,
		Expenses:     stores.Expenses,
		Incomes:      stores.Incomes,
		Logger:       lg.Named("finance"),
	})
	apptSvc := appointments.NewService(stores.Appointments, lg.Named("appointments"))
	reviewSvc := reviews.NewService(stores.Reviews, stores.Orders, lg.Named("reviews"))
	blogSvc := blog.NewService(stores.Blogs, files, lg.Named("blog"))
	faqSvc := faq.NewService(stores.FAQs)
	inquirySvc := inquiries.NewService(inquiries.Deps{
		Repo:   stores.Inquiries,
		FAQs:   stores.FAQs,
		Files:  files,
		Logger: lg.Named("inquiries"),
	})
	go inquirySvc.Run(ctx, time.Minute)
	userSvc := users.NewService(stores.Users)

	// HTTP.
	hlg, timeout := lg.Named("http"), cfg.RequestTimeout
	secret := []byte(cfg.JWTSecret)
	h := routes.Controllers{
		Auth:         controllers.NewAuthController(stores.Users, stores.Tokens, secret, cfg.JWTTTL, hlg, timeout),
		Products:     controllers.NewProductController(stores.Products, hlg, timeout),
		PreBuilds:    controllers.NewPreBuildController(stores.PreBuilds, hlg, timeout),
		Cart:         controllers.NewCartController(carts, hlg, timeout),
		Orders:       controllers.NewOrderController(orderSvc, hlg, timeout),
		Finance:      controllers.NewFinanceController(financeSvc, hlg, timeout),
		Appointments: controllers.NewAppointmentController(apptSvc, hlg, timeout),
		Reviews:      controllers.NewReviewController(reviewSvc, hlg, timeout),
		Blogs:        controllers.NewBlogController(blogSvc, hlg, timeout),
		FAQs:         controllers.NewFAQController(faqSvc, hlg, timeout),
		Inquiries:    controllers.NewInquiryController(inquirySvc, hlg, timeout),
		Users:        controllers.NewUserController(userSvc, stores.Tokens, secret, hlg, timeout),
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return errors.Wrap(err, "trusted proxies")
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logger(hlg),
		middleware.Recovery(hlg),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	r.Static(uploads.PublicPrefix, cfg.UploadDir)
	hc.Register(r)
	routes.RegisterRoutes(r, h,
		middleware.Auth(secret, stores.Tokens, hlg),
		middleware.Admin(),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		hc.SetReady(false)

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(sctx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		hc.Stop()
		close(shutdownDone)
	}()

	hc.SetReady(true)
	lg.Info("Server listening", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
