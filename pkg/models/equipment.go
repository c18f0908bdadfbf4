package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EquipmentCheck is a vehicle daily inspection. On the wire it is one flat
// object: the client's fields plus id, photos, createdAt and createdBy.
type EquipmentCheck struct {
	ID        int64
	Data      Fields
	Photos    map[string]string
	CreatedAt time.Time
	CreatedBy int64
}

var equipmentReserved = map[string]bool{"id": true, "photos": true, "createdAt": true, "createdBy": true}

// Payload is what the SQL backend keeps in its data column: client fields
// plus photos.
func (c EquipmentCheck) Payload() Fields {
	out := NewFields()
	for _, k := range c.Data.keys {
		if !equipmentReserved[k] {
			out.Set(k, c.Data.vals[k])
		}
	}
	out.Set("photos", c.photosOrEmpty())
	return out
}

// SetPayload is the inverse of Payload.
func (c *EquipmentCheck) SetPayload(p Fields) {
	c.Photos = photosFrom(p.vals["photos"])
	data := p.Clone()
	for k := range equipmentReserved {
		data.Delete(k)
	}
	c.Data = data
}

func (c EquipmentCheck) photosOrEmpty() map[string]string {
	if c.Photos == nil {
		return map[string]string{}
	}
	return c.Photos
}

func (c EquipmentCheck) MarshalJSON() ([]byte, error) {
	out := NewFields()
	out.Set("id", c.ID)
	for _, k := range c.Data.keys {
		if !equipmentReserved[k] {
			out.Set(k, c.Data.vals[k])
		}
	}
	out.Set("photos", c.photosOrEmpty())
	out.Set("createdAt", c.CreatedAt.UTC().Format(time.RFC3339Nano))
	out.Set("createdBy", c.CreatedBy)
	return out.MarshalJSON()
}

func (c *EquipmentCheck) UnmarshalJSON(b []byte) error {
	var f Fields
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}

	var out EquipmentCheck
	if v, ok := f.vals["id"].(float64); ok {
		out.ID = int64(v)
	}
	if v, ok := f.vals["createdBy"].(float64); ok {
		out.CreatedBy = int64(v)
	}
	if v, ok := f.vals["createdAt"].(string); ok && v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
		out.CreatedAt = t
	}
	out.SetPayload(f)

	*c = out
	return nil
}

var _ json.Marshaler = EquipmentCheck{}

func photosFrom(v any) map[string]string {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]any:
		for k, p := range m {
			if s, ok := p.(string); ok {
				out[k] = s
			}
		}
	case map[string]string:
		for k, p := range m {
			out[k] = p
		}
	}
	return out
}
