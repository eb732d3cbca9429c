package handler

import (
	"net/http"

	"github.com/airindex/airindex/internal/api/models"
	"github.com/airindex/airindex/internal/api/response"
	"github.com/airindex/airindex/internal/aqi"
)

// MetadataHandler serves the pollutant and category reference data.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// ListPollutants handles GET /v1/metadata/pollutants.
func (h *MetadataHandler) ListPollutants(w http.ResponseWriter, r *http.Request) {
	list := models.PollutantList{
		Items: make([]models.PollutantInfo, 0, len(aqi.Pollutants())),
	}

	for _, p := range aqi.Pollutants() {
		table, err := aqi.TableFor(p)
		if err != nil {
			response.InternalError(w, r, "pollutant table unavailable")
			return
		}

		info := models.PollutantInfo{
			Name:      p.String(),
			ScaleUnit: string(table.Unit),
		}
		for _, node := range table.Nodes {
			info.Breakpoints = append(info.Breakpoints, models.BreakpointNode{
				Concentration: node.Concentration,
				Index:         node.Index,
			})
		}
		list.Items = append(list.Items, info)
	}

	response.JSON(w, r, http.StatusOK, list)
}

// ListCategories handles GET /v1/metadata/categories.
func (h *MetadataHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	bound := func(v int) *int { return &v }

	list := models.CategoryList{
		Items: []models.CategoryInfo{
			{Code: string(aqi.CategoryGood), Label: aqi.CategoryGood.Label(), MinAQI: 0, MaxAQI: bound(50)},
			{Code: string(aqi.CategoryModerate), Label: aqi.CategoryModerate.Label(), MinAQI: 51, MaxAQI: bound(100)},
			{Code: string(aqi.CategoryUnhealthySensitive), Label: aqi.CategoryUnhealthySensitive.Label(), MinAQI: 101, MaxAQI: bound(150)},
			{Code: string(aqi.CategoryUnhealthy), Label: aqi.CategoryUnhealthy.Label(), MinAQI: 151, MaxAQI: bound(200)},
			{Code: string(aqi.CategoryVeryUnhealthy), Label: aqi.CategoryVeryUnhealthy.Label(), MinAQI: 201, MaxAQI: bound(300)},
			{Code: string(aqi.CategoryHazardous), Label: aqi.CategoryHazardous.Label(), MinAQI: 301},
		},
	}

	response.JSON(w, r, http.StatusOK, list)
}
