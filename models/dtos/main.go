package dtos

import (
	"time"

	"xbrowse/models"
	"xbrowse/models/filters"
)

// -- Requests
type FamiliesSearchRequestDto struct {
	Families          []models.Family            `json:"families"`
	VariantFilter     *filters.VariantFilter     `json:"variantFilter,omitempty"`
	QualityFilter     *filters.QualityFilter     `json:"qualityFilter,omitempty"`
	AlleleCountFilter *filters.AlleleCountFilter `json:"alleleCountFilter,omitempty"`
	BurdenFilter      filters.BurdenFilter       `json:"burdenFilter,omitempty"`
}

type FamilyGeneSearchRequestDto struct {
	Family        models.Family          `json:"family"`
	VariantFilter *filters.VariantFilter `json:"variantFilter,omitempty"`
	QualityFilter *filters.QualityFilter `json:"qualityFilter,omitempty"`
}

type CohortGenesSearchRequestDto struct {
	Cohort          models.Cohort          `json:"cohort"`
	InheritanceMode string                 `json:"inheritanceMode"`
	VariantFilter   *filters.VariantFilter `json:"variantFilter,omitempty"`
	QualityFilter   *filters.QualityFilter `json:"qualityFilter,omitempty"`
}

// FilterValidationRequestDto carries filters in their dictionary form so
// that each one can be checked independently.
type FilterValidationRequestDto struct {
	VariantFilter     map[string]interface{} `json:"variantFilter,omitempty"`
	QualityFilter     map[string]interface{} `json:"qualityFilter,omitempty"`
	AlleleCountFilter map[string]interface{} `json:"alleleCountFilter,omitempty"`
	BurdenFilter      map[string]interface{} `json:"burdenFilter,omitempty"`
}

// -- Responses
type SearchResponseDto struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Results interface{} `json:"results"`
}

type FilterValidationResponseDto struct {
	Valid   bool                              `json:"valid"`
	Filters map[string]map[string]interface{} `json:"filters,omitempty"`
	Errors  map[string]string                 `json:"errors,omitempty"`
}

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
