package imports

import (
	"net/http"

	"expenses-app-go/internal/importer"
	"expenses-app-go/internal/transport/httpserver/handler/common"
	"expenses-app-go/pkg/logger"
)

const maxUploadBytes = 10 << 20

type Handlers struct {
	importer importer.FileImporter
	log      logger.Logger
}

func New(fileImporter importer.FileImporter, log logger.Logger) *Handlers {
	return &Handlers{importer: fileImporter, log: log}
}

// CSV splits an uploaded delimiter-separated file into a grid of raw cells.
// Nothing is persisted; the client maps columns and posts expenses itself.
func (h *Handlers) CSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "expected a multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	defer file.Close()

	var delimiter rune
	if value := r.FormValue("delimiter"); value != "" {
		delimiter = []rune(value)[0]
	}

	rows, err := h.importer.Rows(file, delimiter)
	if err != nil {
		h.log.BusinessError("imports: csv parse", err)
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "file could not be parsed")
		return
	}
	common.WriteJSON(w, http.StatusOK, rows)
}
