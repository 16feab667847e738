package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/m-atef1999/Spotless-sub000/cache"
	cartrepo "github.com/m-atef1999/Spotless-sub000/cart/repository"
	cartsvc "github.com/m-atef1999/Spotless-sub000/cart/service"
	catalogrepo "github.com/m-atef1999/Spotless-sub000/catalog/repository"
	catalogsvc "github.com/m-atef1999/Spotless-sub000/catalog/service"
	"github.com/m-atef1999/Spotless-sub000/config"
	customerrepo "github.com/m-atef1999/Spotless-sub000/customer/repository"
	customersvc "github.com/m-atef1999/Spotless-sub000/customer/service"
	driverrepo "github.com/m-atef1999/Spotless-sub000/driver/repository"
	driversvc "github.com/m-atef1999/Spotless-sub000/driver/service"
	api "github.com/m-atef1999/Spotless-sub000/handler"
	"github.com/m-atef1999/Spotless-sub000/middleware"
	orderrepo "github.com/m-atef1999/Spotless-sub000/order/repository"
	ordersvc "github.com/m-atef1999/Spotless-sub000/order/service"
	"github.com/m-atef1999/Spotless-sub000/payment"
	paymentrepo "github.com/m-atef1999/Spotless-sub000/payment/repository"
	paymentsvc "github.com/m-atef1999/Spotless-sub000/payment/service"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
	"github.com/m-atef1999/Spotless-sub000/realtime"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	db := setupDatabase(cfg.DSN, log)

	// Redis is optional: a miss-everything in-memory store keeps the
	// process serving when it is absent.
	var store cache.Store
	if client, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		store = cache.NewMemoryStore()
	} else {
		store = cache.NewRedisStore(client)
	}

	pipe := pipeline.New(db, store, log)
	hub := realtime.NewHub(log)

	catalogRepo := catalogrepo.NewGormCatalogRepo(db)
	customerRepo := customerrepo.NewGormCustomerRepo(db)
	cartRepo := cartrepo.NewGormCartRepo(db)
	orderRepo := orderrepo.NewGormOrderRepo(db)
	driverRepo := driverrepo.NewGormDriverRepo(db)
	paymentRepo := paymentrepo.NewGormPaymentRepo(db)

	catalogService := catalogsvc.NewCatalogService(catalogRepo, store, cfg.CacheTTL, log)
	customerService := customersvc.NewCustomerService(customerRepo, pipe)
	cartService := cartsvc.NewCartService(cartRepo, catalogRepo, pipe)
	orderService := ordersvc.NewOrderService(orderRepo, cartRepo, catalogRepo, driverRepo, pipe, store, cfg.CacheTTL, hub, log)
	driverService := driversvc.NewDriverService(driverRepo, orderRepo, customerRepo, pipe, cfg.ApplicationCooldown, hub, log)
	gateway := payment.NewSandboxGateway("")
	paymentService := paymentsvc.NewPaymentService(paymentRepo, orderRepo, customerRepo, gateway, pipe, cfg.PaymentHMACSecret, hub, log)

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	authed := middleware.RequireAuth(cfg.JWTSecret)
	customerOnly := middleware.RequireRoles("customer", "admin")
	driverOnly := middleware.RequireRoles("driver", "admin")
	adminOnly := middleware.RequireRoles("admin")

	v1 := r.Group("/api/v1")
	{
		// Public catalog and signup.
		v1.GET("/services", api.ListServices(catalogService))
		v1.GET("/time-slots", api.ListTimeSlots(catalogService))
		v1.POST("/customers/register", api.RegisterCustomer(customerService))

		// Gateway callback. Authenticated by HMAC, not JWT.
		v1.POST("/payments/webhook", api.PaymentWebhook(paymentService))
		v1.GET("/payments/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Customer surface.
		cust := v1.Group("/customers", authed, customerOnly)
		{
			cust.GET("/me", api.GetMe(customerService))

			cust.GET("/cart", api.GetCart(cartService))
			cust.POST("/cart/items", api.AddCartItem(cartService))
			cust.DELETE("/cart/items/:serviceId", api.RemoveCartItem(cartService))
			cust.DELETE("/cart", api.ClearCart(cartService))
			cust.POST("/cart/checkout", api.Checkout(orderService))
			cust.POST("/cart/buy-now", api.BuyNow(orderService))

			cust.GET("/orders", api.ListMyOrders(orderService))
		}

		// Payments. Initiation covers order payments and wallet top-ups.
		pay := v1.Group("/payments", authed, customerOnly)
		{
			pay.POST("/initiate", api.InitiatePayment(paymentService))
			pay.GET("", api.ListMyPayments(paymentService))
			pay.GET("/:id", api.GetPayment(paymentService))
		}

		// Orders. Visibility of a single order is enforced in the service.
		ord := v1.Group("/orders", authed)
		{
			ord.GET("/:id", api.GetOrder(orderService))
			ord.POST("/:id/cancel", customerOnly, api.CancelOrder(orderService))
			ord.PUT("/:id/status", driverOnly, api.UpdateOrderStatus(orderService))
		}

		// Driver marketplace.
		drv := v1.Group("/drivers", authed)
		{
			drv.POST("/register", customerOnly, api.SubmitDriverApplication(driverService))
			drv.GET("/registrations/me", customerOnly, api.GetMyDriverApplication(driverService))

			drv.GET("/available", driverOnly, api.ListAvailableOrders(orderService))
			drv.GET("/orders", driverOnly, api.ListDriverOrders(orderService))
			drv.POST("/apply/:orderId", driverOnly, api.ApplyToOrder(driverService))
			drv.PUT("/status", driverOnly, api.UpdateDriverStatus(driverService))
			drv.PUT("/location", driverOnly, api.UpdateDriverLocation(driverService))

			adm := drv.Group("/admin", adminOnly)
			{
				adm.GET("/registrations", api.ListDriverApplications(driverService))
				adm.POST("/registrations/:id/approve", api.ApproveDriverApplication(driverService))
				adm.POST("/registrations/:id/reject", api.RejectDriverApplication(driverService))

				adm.POST("/assign", api.AssignDriver(driverService))
				adm.GET("/orders/:id/applications", api.ListOrderApplications(driverService))
				adm.POST("/order-applications/:id/accept", api.AcceptOrderApplication(driverService))
				adm.POST("/order-applications/:id/reject", api.RejectOrderApplication(driverService))

				adm.GET("/list", api.ListDrivers(driverService))
				adm.GET("/available", api.ListAvailableDrivers(driverService))
				adm.POST("/create", api.CreateDriver(driverService))
				adm.POST("/:id/revoke", api.RevokeDriver(driverService))
			}
		}

		// Catalog seeding. Admin only.
		seed := v1.Group("/admin", authed, adminOnly)
		{
			seed.POST("/services", api.CreateService(catalogRepo, pipe))
			seed.POST("/time-slots", api.CreateTimeSlot(catalogRepo, pipe))
		}

		// Realtime push.
		ws := v1.Group("/ws", authed)
		{
			ws.GET("/driver", driverOnly, api.DriverWS(hub, log))
			ws.GET("/customer", customerOnly, api.CustomerWS(hub, log))
		}
	}

	log.Info("listening", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
