// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", ledgerHandler.CreateAccount)
		r.Get("/", ledgerHandler.ListAccounts)

		r.Route("/{accountID}", func(r chi.Router) {
			r.Get("/", ledgerHandler.GetAccount)
			r.Patch("/", ledgerHandler.RenameAccount)
			r.Delete("/", ledgerHandler.DeleteAccount)
			r.Get("/balance", ledgerHandler.GetBalance)

			r.Post("/operations", ledgerHandler.AddOperation)
			r.Get("/operations", ledgerHandler.GetOperationHistory)
			r.Patch("/operations/{operationID}", ledgerHandler.UpdateOperation)
			r.Delete("/operations/{operationID}", ledgerHandler.RemoveOperation)

			r.Post("/goals", ledgerHandler.CreateSavingGoal)
			r.Get("/goals", ledgerHandler.ListSavingGoals)
			r.Get("/goals/{goalID}", ledgerHandler.GetSavingGoal)
			r.Delete("/goals/{goalID}", ledgerHandler.DeleteSavingGoal)

			// Allocation touches two ledgers at once; it gets its own verbs
			r.Post("/goals/{goalID}/allocations", ledgerHandler.Allocate)
			r.Post("/goals/{goalID}/deallocations", ledgerHandler.Deallocate)

			r.Post("/planned-purchases", ledgerHandler.CreatePlannedPurchase)
			r.Get("/planned-purchases", ledgerHandler.ListPlannedPurchases)
			r.Delete("/planned-purchases/{purchaseID}", ledgerHandler.DeletePlannedPurchase)
		})
	})

	return r
}
