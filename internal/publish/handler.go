package publish

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	week    func() int
}

// NewHandler serves publishing endpoints. week supplies the default week for listings.
func NewHandler(service *Service, week func() int) *Handler {
	return &Handler{service: service, week: week}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/reports/publish", h.Publish).Methods("POST")
	router.HandleFunc("/api/reports/meeting-summary", h.MeetingSummary).Methods("GET")
	router.HandleFunc("/api/reports", h.List).Methods("GET")
	router.HandleFunc("/api/reports/files/{name}", h.Download).Methods("GET")
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Publish(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) MeetingSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := h.service.MeetingSummary(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	week := filter.Week
	if week == 0 && h.week != nil {
		week = h.week()
	}

	locs, err := h.service.List(r.Context(), week)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, locs)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := path.Base(mux.Vars(r)["name"])

	data, err := h.service.Open(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Write(data)
}

func parseFilter(r *http.Request) (domain.ReplenishmentFilter, error) {
	query := r.URL.Query()
	filter := domain.ReplenishmentFilter{SupplierCode: query.Get("supplier")}
	if v := query.Get("week"); v != "" {
		week, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("week must be an integer")
		}
		filter.Week = week
	}
	return filter.Normalize(), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, replenishment.ErrInvalidCurrentWeek):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPublishers):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func contentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".xlsx":
		return ContentTypeXLSX
	case ".csv":
		return ContentTypeCSV
	default:
		return ContentTypeText
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
