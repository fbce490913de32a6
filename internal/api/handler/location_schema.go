package handler

import (
	"bytes"
	"encoding/json"
)

// coordinate accepts a JSON string ("-0.1") or a JSON number (-0.1) and
// keeps the literal text so no precision is lost before decimal parsing.
type coordinate string

func (c *coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = coordinate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = coordinate(n.String())
	return nil
}

// locationRequest is the body of POST /locations and PUT /locations/{id}.
// Field names match case-insensitively, so "Name" and "name" both bind.
type locationRequest struct {
	ID        int64      `json:"id" example:"5"`
	Name      string     `json:"name" example:"Library"`
	Address   string     `json:"address" example:"1 Main St"`
	Longitude coordinate `json:"longitude" swaggertype:"string" example:"-0.1"`
	Latitude  coordinate `json:"latitude" swaggertype:"string" example:"51.5"`
}

type locationResponse struct {
	ID        int64  `json:"id" example:"1"`
	Name      string `json:"name" example:"Library"`
	Address   string `json:"address" example:"1 Main St"`
	Longitude string `json:"longitude" example:"-0.1"`
	Latitude  string `json:"latitude" example:"51.5"`
}

type errorResponse struct {
	Error string `json:"error" example:"location not found"`
}
