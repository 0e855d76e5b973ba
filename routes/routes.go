package routes

import (
	"net/http"

	"despachos/handlers"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type Handlers struct {
	Config      *handlers.ConfigHandler
	Catalog     *handlers.CatalogHandler
	CargoOrders *handlers.CargoOrderHandler
	Manifests   *handlers.ManifestHandler
	Audit       *handlers.AuditHandler
	PDF         *handlers.PDFHandler
}

func NewRouter(h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(withCORS)

	wrap := func(fn http.HandlerFunc) http.HandlerFunc {
		return handlers.RecoverWrapper(logger, fn)
	}

	// RNDC access
	r.Post("/config", wrap(h.Config.SaveConfig))
	r.Get("/config", wrap(h.Config.GetConfig))

	// Catalogue
	r.Post("/sedes", wrap(h.Catalog.SaveSite))
	r.Get("/sedes", wrap(h.Catalog.ListSites))
	r.Post("/vehiculos", wrap(h.Catalog.SaveVehicle))
	r.Get("/vehiculos", wrap(h.Catalog.ListVehicles))
	r.Post("/terceros", wrap(h.Catalog.SaveParty))
	r.Get("/terceros", wrap(h.Catalog.ListParties))

	// Cargo orders
	r.Route("/remesas", func(r chi.Router) {
		r.Post("/", wrap(h.CargoOrders.SubmitCargoOrder))
		r.Get("/", wrap(h.CargoOrders.ListCargoOrders))
		r.Post("/lote", wrap(h.CargoOrders.SubmitBatch))
		r.Post("/importar", wrap(h.CargoOrders.ImportCSV))
		r.Post("/cumplir", wrap(h.CargoOrders.FulfillBatch))
		r.Get("/{consecutivo}", wrap(h.CargoOrders.GetCargoOrder))
		r.Post("/{consecutivo}/reenviar", wrap(h.CargoOrders.Resubmit))
		r.Post("/{consecutivo}/cumplir", wrap(h.CargoOrders.Fulfill))
	})

	// Manifests
	r.Route("/manifiestos", func(r chi.Router) {
		r.Post("/", wrap(h.Manifests.CreateManifests))
		r.Get("/", wrap(h.Manifests.ListManifests))
		r.Get("/candidatos", wrap(h.Manifests.Candidates))
		r.Post("/cumplir", wrap(h.Manifests.FulfillBatch))
		r.Get("/{numero}", wrap(h.Manifests.GetManifest))
		r.Post("/{numero}/cumplir", wrap(h.Manifests.Fulfill))
		r.Get("/{numero}/pdf", wrap(h.PDF.ManifestPDF))
	})

	// Audit trail
	r.Get("/documentos", wrap(h.Audit.ListDocuments))
	r.Get("/logs", wrap(h.Audit.ListLogs))

	return r
}
