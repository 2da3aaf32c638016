// internal/domain/run.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the current state of a replenishment run
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// ParseRunStatus returns the status for a stored label (case-insensitive).
func ParseRunStatus(label string) (RunStatus, error) {
	s := RunStatus(strings.ToLower(strings.TrimSpace(label)))
	switch s {
	case RunPending, RunProcessing, RunCompleted, RunFailed:
		return s, nil
	}
	return "", fmt.Errorf("unknown run status %q", label)
}

// Done reports whether the run reached a terminal state.
func (s RunStatus) Done() bool {
	return s == RunCompleted || s == RunFailed
}

// Run tracks one persisted weekly replenishment computation
type Run struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Week               int        `json:"week" db:"week"`
	SupplierCode       string     `json:"supplier_code,omitempty" db:"supplier_code"`
	Status             RunStatus  `json:"status" db:"status"`
	TotalSKUs          int        `json:"total_skus" db:"total_skus"`
	CriticalCount      int        `json:"critical_count" db:"critical_count"`
	WarningCount       int        `json:"warning_count" db:"warning_count"`
	SuggestionCount    int        `json:"suggestion_count" db:"suggestion_count"`
	TotalOrderQty      int        `json:"total_order_qty" db:"total_order_qty"`
	TotalEstimatedCost float64    `json:"total_estimated_cost" db:"total_estimated_cost"`
	StartedAt          time.Time  `json:"started_at" db:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage       string     `json:"error_message,omitempty" db:"error_message"`
}

// NewRun starts a pending run for week.
func NewRun(week int, supplierCode string, now time.Time) *Run {
	return &Run{
		ID:           uuid.New(),
		Week:         week,
		SupplierCode: supplierCode,
		Status:       RunPending,
		StartedAt:    now.UTC(),
	}
}

// Complete marks the run finished successfully.
func (r *Run) Complete(now time.Time) {
	t := now.UTC()
	r.Status = RunCompleted
	r.CompletedAt = &t
	r.ErrorMessage = ""
}

// Fail marks the run failed with err.
func (r *Run) Fail(now time.Time, err error) {
	t := now.UTC()
	r.Status = RunFailed
	r.CompletedAt = &t
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// ReplenishmentFilter narrows a computation.
type ReplenishmentFilter struct {
	SupplierCode string `json:"supplier_code" form:"supplier"`
	// Week overrides the current week; 0 means the service's current week.
	Week int `json:"week" form:"week"`
}

// Normalize trims user input.
func (f ReplenishmentFilter) Normalize() ReplenishmentFilter {
	f.SupplierCode = strings.TrimSpace(f.SupplierCode)
	return f
}
