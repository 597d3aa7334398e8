package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/J-Olejnik/arepas/internal/api"
)

const (
	maxImageBytes = 10 << 20
	maxModelBytes = 500 << 20
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// modelState tracks the currently loaded model behind a lock so status
// checks and reloads never race.
type modelState struct {
	mu    sync.Mutex
	ready bool
	name  string
	err   string
}

func (m *modelState) status() api.ModelStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return api.ModelStatus{Ready: m.ready, Name: m.name, Error: m.err}
}

func (m *modelState) set(ready bool, name, errMsg string) {
	m.mu.Lock()
	m.ready = ready
	m.name = name
	m.err = errMsg
	m.mu.Unlock()
}

// Server is the review backend: scoring, the review database, and the
// notification channel.
type Server struct {
	store  *Store
	scorer Scorer
	broker *Broker
	model  *modelState
	log    *slog.Logger
}

func New(store *Store, scorer Scorer, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		scorer: scorer,
		broker: NewBroker(),
		model:  &modelState{},
		log:    log,
	}
	s.model.set(true, "default.keras", "")
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/model-status", s.handleModelStatus)
	mux.HandleFunc("POST /api/model-reload", s.handleModelReload)
	mux.HandleFunc("GET /api/load-database", s.handleLoadDatabase)
	mux.HandleFunc("POST /api/save-to-database", s.handleSave)
	mux.HandleFunc("POST /api/delete-from-database", s.handleDelete)
	mux.HandleFunc("POST /api/log-error", s.handleLogError)
	mux.HandleFunc("GET /ws/notifications", s.handleNotifications)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if st := s.model.status(); !st.Ready {
		writeError(w, http.StatusServiceUnavailable, "model is not loaded")
		return
	}
	if err := r.ParseMultipartForm(maxImageBytes * 4); err != nil {
		writeError(w, http.StatusBadRequest, "parse upload: %v", err)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	results := make([]api.PredictionResult, 0, len(files))
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !imageExts[ext] {
			writeError(w, http.StatusBadRequest, "unsupported file type: %s", fh.Filename)
			return
		}
		if fh.Size > maxImageBytes {
			writeError(w, http.StatusBadRequest, "%s exceeds the 10MB limit", fh.Filename)
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "read %s: %v", fh.Filename, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "read %s: %v", fh.Filename, err)
			return
		}

		score, class, gradcam, err := s.scorer.Score(fh.Filename, data)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "classify %s: %v", fh.Filename, err)
			return
		}
		var result api.PredictionResult
		result.Predictions = []float64{score, float64(class)}
		result.Images.GradCAM = gradcam
		results = append(results, result)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.model.status())
}

func (s *Server) handleModelReload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxModelBytes); err != nil {
		writeError(w, http.StatusBadRequest, "parse upload: %v", err)
		return
	}
	name := r.FormValue("filename")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing filename")
		return
	}
	if !strings.HasSuffix(strings.ToLower(name), ".keras") {
		writeError(w, http.StatusBadRequest, "model must be a .keras file")
		return
	}
	files := r.MultipartForm.File["model_data"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "missing model data")
		return
	}
	if files[0].Size > maxModelBytes {
		writeError(w, http.StatusBadRequest, "model exceeds the 500MB limit")
		return
	}

	s.model.set(false, name, "")
	s.publishModelState("Loading model "+name, false, name, "")

	// The stub loads instantly; a real model would take a while, so
	// completion is still announced over the notification channel.
	go func() {
		s.model.set(true, name, "")
		s.publishModelState("Model "+name+" loaded", true, name, "")
		s.log.Info("model reloaded", "name", name)
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "reloading " + name})
}

func (s *Server) publishModelState(msg string, ready bool, name, errMsg string) {
	r := ready
	s.broker.Publish(api.Notification{
		Type:    "notification",
		Message: msg,
		Ready:   &r,
		Name:    name,
		Error:   errMsg,
	})
}

func (s *Server) handleLoadDatabase(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("load database", "error", err)
		writeError(w, http.StatusInternalServerError, "load database: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload api.SavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "decode record: %v", err)
		return
	}
	if payload.ID == nil && payload.PatientID == "" {
		writeError(w, http.StatusBadRequest, "missing patient identifier")
		return
	}
	id, err := s.store.Save(r.Context(), payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "save record: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	if err := s.store.Delete(r.Context(), payload.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "delete record: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) handleLogError(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ErrorMsg string `json:"error_msg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	s.log.Warn("client error", "message", payload.ErrorMsg)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged"})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	st := s.model.status()
	ready := st.Ready
	s.broker.ServeWS(w, r, api.Notification{
		Type:    "notification",
		Message: "connected",
		Ready:   &ready,
		Name:    st.Name,
		Error:   st.Error,
	})
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)
	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
