// routes/routes.go
package routes

import (
	"nevilwatch/controllers"
	"nevilwatch/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	catalogController *controllers.CatalogController,
	cartController *controllers.CartController,
	paymentController *controllers.PaymentController,
	shippingController *controllers.ShippingController,
	statusController *controllers.StatusController,
) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")

	// Catalog routes
	router.HandleFunc("/watches", catalogController.GetWatches).Methods("GET")
	router.HandleFunc("/watches/refresh", catalogController.RefreshWatches).Methods("POST")
	router.HandleFunc("/watches/{id}", catalogController.GetWatchByID).Methods("GET")
	router.HandleFunc("/categories", catalogController.GetCategories).Methods("GET")
	router.HandleFunc("/categories/{id}/watches", catalogController.GetWatchesByCategory).Methods("GET")

	// Device status
	router.HandleFunc("/status", statusController.GetStatus).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/signout", userController.SignOut).Methods("POST")
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cartController.ClearCart).Methods("DELETE")
	protected.HandleFunc("/cart/{id}", cartController.UpdateQuantity).Methods("PUT")
	protected.HandleFunc("/cart/{id}", cartController.RemoveFromCart).Methods("DELETE")

	// Payment method routes
	protected.HandleFunc("/payments", paymentController.GetPaymentMethods).Methods("GET")
	protected.HandleFunc("/payments", paymentController.AddPaymentMethod).Methods("POST")
	protected.HandleFunc("/payments/{id}", paymentController.RemovePaymentMethod).Methods("DELETE")
	protected.HandleFunc("/payments/{id}/default", paymentController.SetDefaultPaymentMethod).Methods("PUT")

	// Shipping form routes
	protected.HandleFunc("/shipping/prefill", shippingController.PrefillAddress).Methods("GET")
	router.HandleFunc("/countries", shippingController.GetCountries).Methods("GET")
}
