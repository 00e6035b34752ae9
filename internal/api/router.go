package api

import (
	"net/http"

	"github.com/AlexZinkM/trade-relay/internal/handler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupRouter sets up router with handlers
func SetupRouter(solanaHandler *handler.SolanaHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Solana endpoints
	mux.HandleFunc("/solana/wallet", solanaHandler.GetWallet)
	mux.HandleFunc("/solana/balance", solanaHandler.GetBalance)
	mux.HandleFunc("/solana/positions", solanaHandler.GetPositions)
	mux.HandleFunc("/solana/swap", solanaHandler.Swap)
	mux.HandleFunc("/solana/transfer", solanaHandler.Transfer)
	mux.HandleFunc("/solana/submit", solanaHandler.Submit)

	mux.HandleFunc("/copytrades", solanaHandler.CopyTrades)
	mux.HandleFunc("/session", solanaHandler.Session)
	mux.HandleFunc("/users/{id}", solanaHandler.PutUser)

	return otelhttp.NewHandler(mux, "trade-relay")
}
