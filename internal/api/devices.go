package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/benchline/benchline-core/internal/device"
)

// deviceResponse is the JSON representation of a composed device.
type deviceResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
	Members      []string `json:"members"`
	Plugin       bool     `json:"plugin"`
}

// toDeviceResponse converts a composite to its API representation.
func (s *Server) toDeviceResponse(dev *device.Composite) deviceResponse {
	return deviceResponse{
		ID:           dev.ID(),
		Name:         dev.Name(),
		Model:        dev.Model(),
		Capabilities: dev.Descriptors(),
		Members:      dev.Members(),
		Plugin:       s.manager.IsPlugin(dev.Name()),
	}
}

// handleListModels returns every model the capability catalog can compose.
func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models": s.catalog.Models(),
		"count":  s.catalog.Len(),
	})
}

// handleListSources returns the capability sources discovered at startup.
func (s *Server) handleListSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": s.catalog.Sources(),
	})
}

// handleListDevices returns all devices registered with the manager.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.manager.Devices()
	out := make([]deviceResponse, 0, len(devices))
	for _, dev := range devices {
		out = append(out, s.toDeviceResponse(dev))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": out,
		"count":   len(out),
	})
}

// handleGetDevice returns a single device by name.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	dev, ok := s.manager.ByName(name)
	if !ok {
		writeNotFound(w, "device not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, s.toDeviceResponse(dev))
}

// handleListPrompts returns the union of prompt patterns across the station.
func (s *Server) handleListPrompts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": s.manager.Prompts(),
	})
}
