// Package server wires the HTTP surface and owns its lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/handlers"
	"github.com/atrule/invoicing/internal/httpx"
	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/mail"
	"github.com/atrule/invoicing/internal/pdf"
	"github.com/atrule/invoicing/internal/services"
)

// NewRouter builds the full route table over the shared connection.
func NewRouter(conn *gorm.DB, sender mail.Sender) *http.ServeMux {
	invoiceSvc := services.NewInvoiceService(conn)
	documentSvc := services.NewDocumentService(conn, pdf.New())
	sendSvc := services.NewSendService(conn, documentSvc, sender)

	invoices := handlers.NewInvoiceHandler(invoiceSvc, documentSvc, sendSvc)
	clients := handlers.NewClientHandler(services.NewClientService(conn))
	owners := handlers.NewOwnerHandler(services.NewOwnerService(conn))
	resources := handlers.NewResourceHandler(services.NewResourceService(conn))
	employees := handlers.NewEmployeeHandler(services.NewEmployeeService(conn))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/invoices", invoices.List)
	mux.HandleFunc("POST /api/invoices", invoices.Create)
	mux.HandleFunc("GET /api/invoices/{id}", invoices.Get)
	mux.HandleFunc("PUT /api/invoices/{id}", invoices.Update)
	mux.HandleFunc("DELETE /api/invoices/{id}", invoices.Delete)
	mux.HandleFunc("POST /api/invoices/{id}/pay", invoices.MarkPaid)
	mux.HandleFunc("GET /api/invoices/{id}/document", invoices.Document)
	mux.HandleFunc("POST /api/invoices/{id}/send", invoices.Send)
	mux.HandleFunc("GET /api/dashboard", invoices.Dashboard)

	mux.HandleFunc("GET /api/clients", clients.List)
	mux.HandleFunc("POST /api/clients", clients.Create)
	mux.HandleFunc("GET /api/clients/{id}", clients.Get)
	mux.HandleFunc("PUT /api/clients/{id}", clients.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", clients.Delete)
	mux.HandleFunc("POST /api/clients/{id}/active", clients.SetActive)
	mux.HandleFunc("POST /api/clients/{id}/employees/{employeeID}", clients.LinkEmployee)

	mux.HandleFunc("GET /api/owners", owners.List)
	mux.HandleFunc("POST /api/owners", owners.Create)
	mux.HandleFunc("GET /api/owners/{id}", owners.Get)
	mux.HandleFunc("PUT /api/owners/{id}", owners.Update)
	mux.HandleFunc("DELETE /api/owners/{id}", owners.Delete)
	mux.HandleFunc("POST /api/owners/{id}/bank-accounts", owners.AddBankAccount)
	mux.HandleFunc("POST /api/bank-accounts/{id}/default", owners.SetDefaultBankAccount)
	mux.HandleFunc("DELETE /api/bank-accounts/{id}", owners.DeleteBankAccount)

	mux.HandleFunc("GET /api/resources", resources.List)
	mux.HandleFunc("POST /api/resources", resources.Create)
	mux.HandleFunc("GET /api/resources/{id}", resources.Get)
	mux.HandleFunc("PUT /api/resources/{id}", resources.Update)
	mux.HandleFunc("DELETE /api/resources/{id}", resources.Delete)

	mux.HandleFunc("GET /api/employees", employees.List)
	mux.HandleFunc("POST /api/employees", employees.Create)
	mux.HandleFunc("GET /api/employees/{id}", employees.Get)
	mux.HandleFunc("PUT /api/employees/{id}", employees.Update)
	mux.HandleFunc("DELETE /api/employees/{id}", employees.Delete)
	mux.HandleFunc("GET /api/designations", employees.Designations)

	return mux
}

// Run serves until ctx is cancelled, then drains with a bounded shutdown.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	log := logger.WithComponent("server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
