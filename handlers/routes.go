package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the /api router. Everything except sign-up, login, password
// recovery and the lookup tables requires a Bearer token.
func Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/registro", Register)
		r.Post("/auth/login", Login)
		r.Post("/auth/recuperar", RequestPasswordReset)
		r.Post("/auth/restablecer", ResetPassword)
		r.Get("/bancos", ListBanks)
		r.Get("/tipos-cuenta", ListAccountTypes)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			// Users
			r.Get("/usuarios/{id_usuario}", GetUser)
			r.Put("/usuarios/{id_usuario}", UpdateUser)

			// Accounts
			r.Get("/cuentas/usuario/{id_usuario}", ListAccounts)
			r.Post("/cuentas", CreateAccount)
			r.Get("/cuentas/{id_cuenta}", GetAccount)
			r.Put("/cuentas/{id_cuenta}", UpdateAccount)
			r.Delete("/cuentas/{id_cuenta}", DeleteAccount)

			// Transfers
			r.Post("/transferencia", CreateTransfer)
			r.Post("/transferencia/pago-tercero", CreatePayment)
			r.Post("/transferencia/recibir-dinero", ReceiveMoney)
			r.Get("/transferencia/usuario/{id_usuario}", ListTransfers)
			r.Get("/transferencia/usuario/{id_usuario}/resumen", GetSummary)
			r.Get("/transferencia/usuario/{id_usuario}/exportar", ExportTransfers)

			// Categories
			r.Get("/transferencia/categorias", ListCategories)
			r.Post("/transferencia/categorias", CreateCategory)
			r.Put("/transferencia/categorias/{id_categoria}", UpdateCategory)
			r.Delete("/transferencia/categorias/{id_categoria}", DeleteCategory)
		})
	})

	return r
}
