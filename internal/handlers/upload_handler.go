package handlers

import (
	"io"
	"net/http"

	"field-backend/internal/storage"
	"field-backend/pkg/utils"
)

type UploadHandler struct {
	Uploader *storage.Uploader
}

func NewUploadHandler(u *storage.Uploader) *UploadHandler {
	return &UploadHandler{Uploader: u}
}

// Upload accepts one multipart file under the "file" field and returns
// {"file_url": ...}. Size and type are checked before any storage call.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+4096)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		utils.Error(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, err := storage.Validate(contentType, header.Size); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	fileURL, err := h.Uploader.Upload(r.Context(), data, header.Filename, contentType)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"file_url": fileURL})
}
