package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/favorites"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// объект приложения: конфиг, Postgres, локальное хранилище и бакет изображений
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	profileRepo := storage.NewProfileRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	addressRepo := storage.NewAddressRepository(application.DB)
	slideRepo := storage.NewSlideRepository(application.DB)

	authService := service.NewAuthService(
		log, userRepo, profileRepo,
		time.Duration(cfg.JWT.TokenTTL)*time.Minute,
		cfg.Auth.RoleTimeout,
		cfg.Auth.AdminEmails,
	)
	catalogService := service.NewCatalogService(log, productRepo)
	checkoutService := service.NewCheckoutService(log, addressRepo, orderRepo, service.ShippingRates{
		BaseRate:       cfg.Shipping.BaseRate,
		PickupDiscount: cfg.Shipping.PickupDiscount,
	})
	orderService := service.NewOrderService(log, orderRepo, cfg.Admin.FetchTimeout)
	addressService := service.NewAddressService(log, addressRepo)
	profileService := service.NewProfileService(log, profileRepo)
	productAdminService := service.NewProductAdminService(log, productRepo, application.Bucket)
	slideService := service.NewSlideService(log, slideRepo)

	// сессии: корзина в памяти с зеркалом в Postgres, избранное в локальном хранилище
	sessions := session.NewManager(log, cartRepo,
		func(sessionID string) favorites.KV { return application.Local.Scope(sessionID) },
		session.Options{
			MirrorTimeout:  cfg.Cart.MirrorTimeout,
			AdminEmails:    cfg.Auth.AdminEmails,
			Pruner:         application.Local,
			LocalRetention: cfg.LocalStore.Retention,
		},
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sessions.RunSweeper(sweepCtx, cfg.Session.IdleTTL, cfg.Session.SweepInterval)

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)

	// загруженные изображения
	bucketPrefix := "/storage/" + application.Bucket.Name() + "/"
	router.Handle(bucketPrefix+"*", application.Bucket.Handler(bucketPrefix))

	router.Route("/api", func(r chi.Router) {
		r.Use(session.Middleware(log, sessions))

		// аутентификация и привязка пользователя к сессии
		r.Post("/auth/signup", handlers.SignUpHandler(log, authService, sessions))
		r.Post("/auth/signin", handlers.SignInHandler(log, authService, sessions))
		r.Post("/auth/signout", handlers.SignOutHandler(log))
		r.Get("/auth/me", handlers.MeHandler(log))

		// каталог
		r.Get("/products", handlers.ListProductsHandler(log, catalogService))
		r.Get("/products/{id}", handlers.GetProductHandler(log, catalogService))
		r.Get("/slides", handlers.ListSlidesHandler(log, slideService))

		// корзина сессии
		r.Get("/cart", handlers.GetCartHandler(log))
		r.Delete("/cart", handlers.ClearCartHandler(log))
		r.Post("/cart/items", handlers.AddCartItemHandler(log, catalogService))
		r.Put("/cart/items/{productID}", handlers.UpdateCartItemHandler(log))
		r.Delete("/cart/items/{productID}", handlers.DeleteCartItemHandler(log))

		// избранное
		r.Get("/favorites", handlers.ListFavoritesHandler(log))
		r.Post("/favorites/{productID}/toggle", handlers.ToggleFavoriteHandler(log, catalogService))

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware())

			r.Post("/checkout", handlers.CheckoutHandler(log, checkoutService))
			r.Get("/orders", handlers.ListMyOrdersHandler(log, orderService))
			r.Post("/orders/{id}/cancel", handlers.CancelOrderHandler(log, orderService))

			r.Get("/addresses", handlers.ListAddressesHandler(log, addressService))
			r.Post("/addresses", handlers.AddAddressHandler(log, addressService))
			r.Delete("/addresses/{id}", handlers.DeleteAddressHandler(log, addressService))
			r.Post("/addresses/{id}/default", handlers.SetDefaultAddressHandler(log, addressService))

			r.Get("/profile", handlers.GetProfileHandler(log, profileService))
			r.Put("/profile", handlers.UpdateProfileHandler(log, profileService))

			// админ-панель
			r.Route("/admin", func(r chi.Router) {
				r.Use(jwtmiddleware.RequireAdmin(log, authService))

				r.Get("/orders", handlers.AdminListOrdersHandler(log, orderService))
				r.Put("/orders/{id}/status", handlers.AdminUpdateOrderStatusHandler(log, orderService))

				r.Post("/products", handlers.CreateProductHandler(log, productAdminService))
				r.Put("/products/{id}", handlers.UpdateProductHandler(log, productAdminService))
				r.Delete("/products/{id}", handlers.DeleteProductHandler(log, productAdminService))
				r.Post("/uploads", handlers.UploadImageHandler(log, productAdminService, cfg.Storage.MaxUploadSize))

				r.Get("/slides", handlers.AdminListSlidesHandler(log, slideService))
				r.Post("/slides", handlers.CreateSlideHandler(log, slideService))
				r.Put("/slides/{id}", handlers.UpdateSlideHandler(log, slideService))
				r.Delete("/slides/{id}", handlers.DeleteSlideHandler(log, slideService))
			})
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	stopSweeper()
	// фоновые записи корзины должны дойти до базы до закрытия подключения
	sessions.Wait()
	log.Info("server gracefully stopped")
}
