package contracts

import "testing"

const validSlotsPayload = `[
  {
    "venue": {"id": "t-1", "name": "Rocket Padel", "latitude": 51.47, "longitude": -0.17, "indoor": true},
    "court": {"id": "r-1", "name": "Court 1"},
    "startTime": "2025-03-15T10:00:00Z",
    "endTime": "2025-03-15T11:30:00Z",
    "duration": 90,
    "price": 4800,
    "currency": "GBP",
    "available": true,
    "link": "https://playtomic.io/tenant/rocket-padel?date=2025-03-15"
  }
]`

func TestValidatePayload(t *testing.T) {
	if err := ValidatePayload("CachedSlotsPayload", "1.0.0", []byte(validSlotsPayload)); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	// Пустой список слотов - валидная запись кеша
	if err := ValidatePayload("CachedSlotsPayload", "1.0.0", []byte(`[]`)); err != nil {
		t.Errorf("empty payload rejected: %v", err)
	}
}

func TestValidatePayloadRejectsBrokenData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{broken`},
		{"not an array", `{"venue": {}}`},
		{"missing required fields", `[{"venue": {"id": "t-1", "name": "X"}}]`},
		{"float price", `[{"venue": {"id": "t-1", "name": "X"}, "court": {"id": "r-1", "name": "C"}, "startTime": "2025-03-15T10:00:00Z", "endTime": "2025-03-15T11:30:00Z", "duration": 90, "price": 48.5, "currency": "GBP", "available": true}]`},
		{"lowercase currency", `[{"venue": {"id": "t-1", "name": "X"}, "court": {"id": "r-1", "name": "C"}, "startTime": "2025-03-15T10:00:00Z", "endTime": "2025-03-15T11:30:00Z", "duration": 90, "price": 4850, "currency": "gbp", "available": true}]`},
	}

	for _, tt := range tests {
		if err := ValidatePayload("CachedSlotsPayload", "1.0.0", []byte(tt.body)); err == nil {
			t.Errorf("%s: broken payload accepted", tt.name)
		}
	}
}

func TestValidatePayloadUnknownSchema(t *testing.T) {
	if err := ValidatePayload("CachedSlotsPayload", "9.9.9", []byte(`[]`)); err == nil {
		t.Error("unknown schema version should be rejected")
	}
}
