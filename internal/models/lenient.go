package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Ingestion has written numeric and boolean fields both as JSON scalars and
// as strings. These helpers accept either and treat anything else as absent.

func lenientFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func lenientInt(raw json.RawMessage) *int {
	f := lenientFloat(raw)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

func lenientBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		b, _ = strconv.ParseBool(strings.TrimSpace(s))
		return b
	}
	return false
}

func (d *RestaurantDocument) UnmarshalJSON(data []byte) error {
	type plain RestaurantDocument
	aux := struct {
		*plain
		PriceLevel   json.RawMessage `json:"priceLevel"`
		QualityScore json.RawMessage `json:"qualityScore"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.PriceLevel = lenientInt(aux.PriceLevel)
	d.QualityScore = lenientFloat(aux.QualityScore)
	return nil
}

func (r *Review) UnmarshalJSON(data []byte) error {
	type plain Review
	aux := struct {
		*plain
		Rating    json.RawMessage `json:"rating"`
		IsDeleted json.RawMessage `json:"isDeleted"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Rating = lenientFloat(aux.Rating)
	r.IsDeleted = lenientBool(aux.IsDeleted)
	return nil
}

func (m *MenuItem) UnmarshalJSON(data []byte) error {
	type plain MenuItem
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Price = lenientFloat(aux.Price)
	return nil
}
