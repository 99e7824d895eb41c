package api

import (
	"time"

	"github.com/rubiojr/searchfields/pkg/search"
)

type FieldInfo struct {
	Selector string `json:"selector"`
	Primary  string `json:"primary"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Default  bool   `json:"default"`
}

type FilterInfo struct {
	Name       string      `json:"name"`
	Table      string      `json:"table,omitempty"`
	Searchable bool        `json:"searchable"`
	Bases      []string    `json:"bases"`
	Fields     []FieldInfo `json:"fields"`
}

type ListFiltersResponse struct {
	Filters []FilterInfo `json:"filters"`
	Count   int          `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Filter     string             `json:"filter"`
	Search     string             `json:"search"`
	Conditions []search.Condition `json:"conditions"`
	Rows       []search.Row       `json:"rows"`
	Count      int                `json:"count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	HasMore    bool               `json:"has_more"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Filters   int       `json:"filters"`
}
