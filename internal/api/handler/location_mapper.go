package handler

import (
	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

// --- Request → Service input ---

func toLocationInput(req *locationRequest) *ports.LocationInput {
	if req == nil {
		return nil
	}
	return &ports.LocationInput{
		ID:        req.ID,
		Name:      req.Name,
		Address:   req.Address,
		Longitude: string(req.Longitude),
		Latitude:  string(req.Latitude),
	}
}

// --- Domain → Response ---

func toLocationResponse(loc *domain.Location) locationResponse {
	return locationResponse{
		ID:        loc.ID,
		Name:      loc.Name,
		Address:   loc.Address,
		Longitude: loc.Longitude.String(),
		Latitude:  loc.Latitude.String(),
	}
}

func toLocationResponses(locs []domain.Location) []locationResponse {
	out := make([]locationResponse, 0, len(locs))
	for i := range locs {
		out = append(out, toLocationResponse(&locs[i]))
	}
	return out
}
