package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"despachos/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ManifestRenderer interface {
	GenerateManifestPDF(ctx context.Context, number string) ([]byte, error)
}

type PDFUploader interface {
	Upload(ctx context.Context, fileBytes []byte, filename string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type PDFHandler struct {
	Renderer  ManifestRenderer
	Manifests repository.ManifestRepository
	SavePath  string
	Uploader  PDFUploader // optional
	Logger    *zap.Logger
}

// ManifestPDF prints a manifest, keeps a copy on disk (and in R2 when
// configured) and records where it went. ?descargar=1 streams the file.
func (h *PDFHandler) ManifestPDF(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "numero")
	manifest, err := h.Manifests.GetManifestByNumber(number)
	if err != nil {
		serverError(w, "Failed to load manifest", err)
		return
	}
	if manifest == nil {
		writeJSON(w, http.StatusNotFound, ApiResponse{Success: false, Message: "Manifest not found"})
		return
	}

	saveDir := h.SavePath
	if saveDir == "" {
		saveDir = "./pdfs"
	}
	if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
		serverError(w, "Failed to create save directory", err)
		return
	}

	pdfBytes, err := h.Renderer.GenerateManifestPDF(r.Context(), number)
	if err != nil {
		serverError(w, "Failed to generate PDF", err)
		return
	}
	if len(pdfBytes) == 0 {
		writeJSON(w, http.StatusNotFound, ApiResponse{Success: false, Message: "Manifest not found"})
		return
	}

	now := time.Now()
	filename := fmt.Sprintf("manifiesto_%s_%d.pdf", number, now.Unix())
	location := filepath.Join(saveDir, filename)
	if err := os.WriteFile(location, pdfBytes, 0644); err != nil {
		serverError(w, "Failed to save PDF", err)
		return
	}

	var publicURL string
	if h.Uploader != nil {
		publicURL, err = h.Uploader.Upload(r.Context(), pdfBytes, filename)
		if err != nil {
			h.Logger.Warn("manifest pdf upload failed", zap.String("numero", number), zap.Error(err))
		} else {
			if manifest.PdfPath != nil && strings.HasPrefix(*manifest.PdfPath, "http") {
				if err := h.Uploader.Delete(r.Context(), *manifest.PdfPath); err != nil {
					h.Logger.Warn("previous manifest pdf not deleted", zap.String("url", *manifest.PdfPath), zap.Error(err))
				}
			}
			location = publicURL
		}
	}

	// The file exists either way; a failed bookkeeping write is only logged.
	if err := h.Manifests.UpdatePDFInfo(manifest.ID, location, now.UTC()); err != nil {
		h.Logger.Error("update manifest pdf info", zap.String("numero", number), zap.Error(err))
	}

	if r.URL.Query().Get("descargar") != "" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, _ = w.Write(pdfBytes)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Manifest PDF generated",
		Data:    map[string]string{"file": filename, "url": publicURL},
	})
}
