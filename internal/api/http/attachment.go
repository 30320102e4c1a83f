package httpapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/service"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
)

// запас на заголовки multipart сверх размера файла
const multipartOverhead = 1 << 20

// UploadAttachment обрабатывает POST /attachments (multipart, поле file)
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.badRequest(w, "file", fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, "file", "file is required")
		return
	}
	defer file.Close()

	a, err := h.attachments.Upload(r.Context(), service.UploadInput{
		Actor:       actor(r),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttachmentResponse(a))
}

// GetAttachment обрабатывает GET /attachments/{id}: отдаёт содержимое потоком
func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	a, body, err := h.attachments.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(a.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": a.FileName}))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		// заголовки уже отправлены, остаётся только залогировать
		platformobservability.L(r.Context(), h.logger).Warn("failed to stream attachment",
			zap.String("attachment_id", a.ID), zap.Error(err))
	}
}

// DeleteAttachment обрабатывает DELETE /attachments/{id}
func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.attachments.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
