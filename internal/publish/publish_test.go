package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/drive"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/gorilla/mux"
)

type memoryStore struct {
	objects map[string][]byte
	fail    error
}

func newMemoryStore() *memoryStore { return &memoryStore{objects: make(map[string][]byte)} }

func (m *memoryStore) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v)), LastModified: time.Unix(0, 0)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return v, nil
}

func (m *memoryStore) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if m.fail != nil {
		return m.fail
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStore) URL(key string) string { return "http://minio.local/reports/" + key }

type fakeDrive struct {
	uploaded []string
	resolved []string
}

func (f *fakeDrive) ListFiles(ctx context.Context, folderID string) ([]*drive.File, error) {
	out := make([]*drive.File, 0, len(f.uploaded))
	for _, name := range f.uploaded {
		out = append(out, &drive.File{Name: name, WebViewLink: "https://drive/" + name, ModifiedTime: "2024-03-04T10:00:00Z"})
	}
	return out, nil
}

func (f *fakeDrive) UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader) (*drive.File, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, name)
	return &drive.File{ID: name, Name: name, WebViewLink: "https://drive/" + name}, nil
}

func (f *fakeDrive) FindFolderByPath(ctx context.Context, path string) (string, error) {
	f.resolved = append(f.resolved, path)
	return "folder-123", nil
}

type staticSource struct{}

func (staticSource) Result(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.Result, error) {
	week := filter.Week
	if week == 0 {
		week = 10
	}
	cost := 4.0
	return replenishment.Run(replenishment.Input{
		SKUs: []replenishment.SKU{{
			Code:                  "SKU-1",
			SupplierCode:          "SUP-A",
			MatrixCell:            "AX",
			UnitCost:              &cost,
			AvgWeeklyDemand:       10,
			LeadTimeWeeks:         2,
			MOQ:                   1,
			ServiceLevel:          0.95,
			TargetWOH:             4,
			SafetyStockMultiplier: 1,
			Method:                replenishment.MethodAuto,
			Review:                replenishment.ReviewWeekly,
		}},
		CurrentWeek: week,
	})
}

func TestRender(t *testing.T) {
	res, _ := staticSource{}.Result(context.Background(), domain.ReplenishmentFilter{})

	artifacts, err := Render(res, "SUP-A")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := []string{
		"replenishment-w10-sup-a-meeting-summary.txt",
		"replenishment-w10-sup-a-suggestions.csv",
		"replenishment-w10-sup-a-purchase-orders.xlsx",
	}
	for i, a := range artifacts {
		if a.Name != want[i] {
			t.Errorf("artifact %d = %s, want %s", i, a.Name, want[i])
		}
		if len(a.Data) == 0 {
			t.Errorf("artifact %s is empty", a.Name)
		}
	}
	if !bytes.HasPrefix(artifacts[2].Data, []byte("PK")) {
		t.Error("workbook is not a zip container")
	}
}

func TestPublish(t *testing.T) {
	store := newMemoryStore()
	gd := &fakeDrive{}
	svc := NewService(staticSource{}, NewObjectPublisher(store, "/reports/"), NewDrivePublisher(gd, "Shared/Replenishment"))

	report, err := svc.Publish(context.Background(), domain.ReplenishmentFilter{})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if report.Week != 10 || len(report.Locations) != 6 || len(report.Failures) != 0 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := store.objects["reports/replenishment-w10-suggestions.csv"]; !ok {
		t.Errorf("objects = %v", store.objects)
	}
	if len(gd.resolved) != 1 {
		t.Errorf("drive folder resolved %d times, want once", len(gd.resolved))
	}

	locs, err := svc.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 6 {
		t.Errorf("List() = %d locations, want 6", len(locs))
	}
	if locs[0].Name != "replenishment-w10-meeting-summary.txt" {
		t.Errorf("object name = %s, prefix not stripped", locs[0].Name)
	}

	data, err := svc.Open(context.Background(), "replenishment-w10-meeting-summary.txt")
	if err != nil || !strings.Contains(string(data), "W10") {
		t.Errorf("Open() = %q, %v", data, err)
	}
}

func TestPublishPartialFailure(t *testing.T) {
	store := newMemoryStore()
	store.fail = errors.New("bucket missing")
	gd := &fakeDrive{}
	svc := NewService(staticSource{}, NewObjectPublisher(store, ""), NewDrivePublisher(gd, "folder-id"))

	report, err := svc.Publish(context.Background(), domain.ReplenishmentFilter{})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if report.Failures["storage"] != "bucket missing" || len(report.Locations) != 3 {
		t.Errorf("report = %+v", report)
	}
	if len(gd.resolved) != 0 {
		t.Error("a plain folder ID should not be resolved")
	}
}

func TestPublishWithoutPublishers(t *testing.T) {
	svc := NewService(staticSource{})
	if _, err := svc.Publish(context.Background(), domain.ReplenishmentFilter{}); !errors.Is(err, ErrNoPublishers) {
		t.Errorf("error = %v, want ErrNoPublishers", err)
	}
}

func newTestRouter(svc *Service) *mux.Router {
	r := mux.NewRouter()
	NewHandler(svc, func() int { return 10 }).RegisterRoutes(r)
	return r
}

func TestHandler(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(NewService(staticSource{}, NewObjectPublisher(store, "")))

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"meeting summary", http.MethodGet, "/api/reports/meeting-summary?week=12", http.StatusOK, "W12"},
		{"bad week", http.MethodGet, "/api/reports/meeting-summary?week=abc", http.StatusBadRequest, "week must be an integer"},
		{"invalid week", http.MethodPost, "/api/reports/publish?week=-1", http.StatusBadRequest, "current week"},
		{"publish", http.MethodPost, "/api/reports/publish", http.StatusOK, "replenishment-w10-purchase-orders.xlsx"},
		{"list", http.MethodGet, "/api/reports", http.StatusOK, "replenishment-w10-suggestions.csv"},
		{"download", http.MethodGet, "/api/reports/files/replenishment-w10-suggestions.csv", http.StatusOK, "sku_code"},
		{"wrong method", http.MethodGet, "/api/reports/publish", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandlerPublishResponse(t *testing.T) {
	router := newTestRouter(NewService(staticSource{}, NewObjectPublisher(newMemoryStore(), "")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/publish?supplier=SUP-A", nil))

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Locations) != 3 || !strings.Contains(report.Locations[0].URL, "-sup-a-") {
		t.Errorf("report = %+v", report)
	}
}
