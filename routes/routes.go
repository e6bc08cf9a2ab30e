package routes

import (
	"github.com/gin-gonic/gin"

	"alphastore/controllers"
)

// Controllers is everything the API mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Products     *controllers.ProductController
	PreBuilds    *controllers.PreBuildController
	Cart         *controllers.CartController
	Orders       *controllers.OrderController
	Finance      *controllers.FinanceController
	Appointments *controllers.AppointmentController
	Reviews      *controllers.ReviewController
	Blogs        *controllers.BlogController
	FAQs         *controllers.FAQController
	Inquiries    *controllers.InquiryController
	Users        *controllers.UserController
}

// RegisterRoutes mounts the API under /api. auth authenticates the caller
// and admin restricts a route to administrators.
func RegisterRoutes(r gin.IRouter, h Controllers, auth, admin gin.HandlerFunc) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/low-stock", auth, admin, h.Products.LowStock)
		products.GET("/:id", h.Products.Get)
		products.GET("/:id/related", h.Products.Related)
		products.POST("", auth, admin, h.Products.Create)
		products.PATCH("/:id", auth, admin, h.Products.Update)
		products.DELETE("/:id", auth, admin, h.Products.Delete)
		products.PATCH("/:id/inventory", auth, admin, h.Products.PatchInventory)
	}

	prebuilds := api.Group("/prebuilds")
	{
		prebuilds.GET("", h.PreBuilds.List)
		prebuilds.GET("/:id", h.PreBuilds.Get)
		prebuilds.POST("", auth, admin, h.PreBuilds.Create)
		prebuilds.PUT("/:id", auth, admin, h.PreBuilds.Update)
		prebuilds.DELETE("/:id", auth, admin, h.PreBuilds.Delete)
	}

	cart := api.Group("/cart", auth)
	{
		cart.GET("", h.Cart.Get)
		cart.POST("", h.Cart.Add)
		cart.PATCH("/:lineId", h.Cart.UpdateQuantity)
		cart.DELETE("/:lineId", h.Cart.Remove)
		cart.DELETE("", h.Cart.Clear)
	}

	orders := api.Group("/orders", auth)
	{
		orders.POST("", h.Orders.Place)
		orders.GET("", h.Orders.ListMine)
		orders.PUT("/:id/cancel", h.Orders.Cancel)
	}

	adminOrders := api.Group("/successorders/admin", auth, admin)
	{
		adminOrders.GET("", h.Orders.AdminList)
		adminOrders.GET("/stats", h.Orders.Stats)
		adminOrders.GET("/:id", h.Orders.AdminGet)
		adminOrders.PUT("/updatestatus/:id", h.Orders.UpdateStatus)
		adminOrders.DELETE("/:id", h.Orders.Delete)
		adminOrders.POST("/:id/attachments", h.Orders.Attach)
	}

	taxes := api.Group("/taxes", auth, admin)
	{
		taxes.POST("", h.Finance.CreateTax)
		taxes.GET("", h.Finance.ListTaxes)
	}

	fin := api.Group("/finance", auth, admin)
	{
		fin.GET("/summary", h.Finance.Summary)

		fin.POST("/invoices", h.Finance.CreateInvoice)
		fin.GET("/invoices", h.Finance.ListInvoices)
		fin.GET("/invoices/:id", h.Finance.GetInvoice)
		fin.PUT("/invoices/:id", h.Finance.UpdateInvoiceStatus)
		fin.DELETE("/invoices/:id", h.Finance.DeleteInvoice)

		fin.POST("/transactions", h.Finance.CreateTransaction)
		fin.GET("/transactions", h.Finance.ListTransactions)
		fin.PUT("/transactions/:id", h.Finance.UpdateTransaction)
		fin.DELETE("/transactions/:id", h.Finance.DeleteTransaction)

		fin.POST("/pettycash", h.Finance.CreatePettyCash)
		fin.GET("/pettycash", h.Finance.ListPettyCash)
		fin.PUT("/pettycash/:id", h.Finance.UpdatePettyCash)
		fin.DELETE("/pettycash/:id", h.Finance.DeletePettyCash)

		fin.POST("/expenses", h.Finance.CreateExpense)
		fin.GET("/expenses", h.Finance.ListExpenses)
		fin.GET("/expenses/:id", h.Finance.GetExpense)
		fin.PUT("/expenses/:id", h.Finance.UpdateExpense)
		fin.DELETE("/expenses/:id", h.Finance.DeleteExpense)

		fin.POST("/income", h.Finance.CreateIncome)
		fin.GET("/income", h.Finance.ListIncomes)
		fin.GET("/income/:id", h.Finance.GetIncome)
		fin.PUT("/income/:id", h.Finance.UpdateIncome)
		fin.DELETE("/income/:id", h.Finance.DeleteIncome)
	}

	appts := api.Group("/appointments", auth)
	{
		appts.POST("", h.Appointments.Create)
		appts.GET("/mine", h.Appointments.ListMine)
		appts.GET("/:id", h.Appointments.Get)
		appts.GET("", admin, h.Appointments.List)
		appts.PUT("/:id", admin, h.Appointments.Update)
		appts.DELETE("/:id", admin, h.Appointments.Delete)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("/approved", h.Reviews.ListApproved)
		reviews.POST("", auth, h.Reviews.Submit)
		reviews.GET("/mine", auth, h.Reviews.ListMine)
		reviews.PUT("/:id", auth, h.Reviews.Update)
		reviews.DELETE("/:id", auth, h.Reviews.Delete)
		reviews.GET("", auth, admin, h.Reviews.ListAll)
		reviews.PUT("/:id/moderate", auth, admin, h.Reviews.Moderate)
	}

	blogs := api.Group("/blogs")
	{
		blogs.GET("", h.Blogs.ListPublished)
		blogs.GET("/admin", auth, admin, h.Blogs.ListAll)
		blogs.GET("/:id", h.Blogs.Get)
		blogs.POST("", auth, admin, h.Blogs.Create)
		blogs.PUT("/:id", auth, admin, h.Blogs.Update)
		blogs.DELETE("/:id", auth, admin, h.Blogs.Delete)
	}

	faqs := api.Group("/faqs")
	{
		faqs.GET("", h.FAQs.List)
		faqs.PUT("/:id/views", h.FAQs.View)
		faqs.POST("", auth, admin, h.FAQs.Create)
		faqs.PUT("/:id", auth, admin, h.FAQs.Update)
		faqs.DELETE("/:id", auth, admin, h.FAQs.Delete)
	}

	inq := api.Group("/inquiries", auth)
	{
		inq.POST("", h.Inquiries.Submit)
		inq.GET("/mine", h.Inquiries.ListMine)
		inq.PUT("/:id", h.Inquiries.Update)
		inq.DELETE("/:id", h.Inquiries.Delete)
		inq.GET("", admin, h.Inquiries.ListAll)
		inq.PUT("/:id/resolve", admin, h.Inquiries.Resolve)
		inq.POST("/:id/faq", admin, h.Inquiries.AddToFAQ)
	}

	usersGroup := api.Group("/users")
	{
		usersGroup.POST("/verify-details", h.Users.VerifyDetails)
		usersGroup.GET("/me", auth, h.Users.Me)
		usersGroup.PUT("/me", auth, h.Users.UpdateMe)
		usersGroup.PUT("/me/password", auth, h.Users.ChangePassword)
		usersGroup.DELETE("/me", auth, h.Users.DeleteMe)
		usersGroup.GET("", auth, admin, h.Users.List)
	}
}
