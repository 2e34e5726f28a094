package controllers

import (
	"github.com/google/uuid"

	"github.com/harborfood/pantry-backend/internal/pantry"
	pkgerrors "github.com/harborfood/pantry-backend/pkg/errors"
)

// geoPointRequest is the optional caller-captured location payload.
type geoPointRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

func (g *geoPointRequest) toGeoPoint() *pantry.GeoPoint {
	if g == nil {
		return nil
	}
	return &pantry.GeoPoint{Latitude: g.Latitude, Longitude: g.Longitude, Accuracy: g.Accuracy}
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseUUID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
