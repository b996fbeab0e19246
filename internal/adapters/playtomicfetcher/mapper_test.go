package playtomicfetcher

import (
	"testing"
	"time"
)

func testTenant() playtomicTenant {
	return playtomicTenant{
		TenantID:   "t-1",
		TenantUID:  "rocket-padel",
		TenantName: "Rocket Padel",
		Address: playtomicAddress{
			Street: "1 Example Road",
			City:   "London",
			Zip:    "SW11 8AB",
			Coord:  playtomicCoordinate{Lat: 51.47, Lon: -0.17},
		},
		Amenities: []string{"parking", "bar"},
		Resources: []playtomicResource{
			{
				ResourceID: "r-1",
				Name:       "Court 1",
				Properties: playtomicResourceProperties{ResourceType: "indoor", ResourceFeature: "panoramic"},
			},
			{
				ResourceID: "r-2",
				Name:       "Court 2",
				Properties: playtomicResourceProperties{ResourceType: "indoor", ResourceFeature: "wall"},
			},
		},
	}
}

func TestToDomainVenue(t *testing.T) {
	v := toDomainVenue(testTenant())

	if v.ID != "t-1" || v.Name != "Rocket Padel" || v.Slug != "rocket-padel" {
		t.Errorf("venue identity = %q/%q/%q", v.ID, v.Name, v.Slug)
	}
	if v.Postcode != "SW11 8AB" || v.Address != "1 Example Road" {
		t.Errorf("venue address = %q / %q", v.Address, v.Postcode)
	}
	if !v.Indoor {
		t.Error("venue with all-indoor resources should be indoor")
	}
	if v.Surface != "panoramic" {
		t.Errorf("venue surface = %q, want panoramic (first court)", v.Surface)
	}
	if len(v.Courts) != 2 || v.Courts[1].Surface != "wall" {
		t.Errorf("courts = %+v", v.Courts)
	}
}

func TestToDomainVenueOutdoorAndSlugFallback(t *testing.T) {
	tenant := testTenant()
	tenant.TenantUID = ""
	tenant.Resources[1].Properties.ResourceType = "outdoor"

	v := toDomainVenue(tenant)
	if v.Indoor {
		t.Error("venue with an outdoor resource should not be indoor")
	}
	if v.Slug != "rocket-padel" {
		t.Errorf("slug fallback = %q, want slugified name", v.Slug)
	}
}

func TestToDomainSlots(t *testing.T) {
	venue := toDomainVenue(testTenant())
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	records := []playtomicAvailability{
		{
			ResourceID: "r-1",
			StartDate:  "2025-03-15",
			Slots: []playtomicSlot{
				{StartTime: "10:00:00", Duration: 60, Price: "48 GBP"},
				{StartTime: "11:30:00", Duration: 0, Price: "52.5 GBP"}, // без длительности
				{StartTime: "bogus", Duration: 90, Price: "48 GBP"},     // нечитаемое время
			},
		},
		{
			// Ресурс, которого нет в метаданных площадки
			ResourceID: "r-unknown",
			StartDate:  "2025-03-15",
			Slots:      []playtomicSlot{{StartTime: "12:00:00", Duration: 90, Price: "40 GBP"}},
		},
	}

	slots := toDomainSlots(venue, date, records)
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3 (unparseable time skipped)", len(slots))
	}

	first := slots[0]
	if first.Court.Name != "Court 1" {
		t.Errorf("first slot court = %q, want Court 1", first.Court.Name)
	}
	if first.Price != 4800 || first.Currency != "GBP" {
		t.Errorf("first slot price = %d %s, want 4800 GBP", first.Price, first.Currency)
	}
	if first.Duration != 60 {
		t.Errorf("first slot duration = %d, want 60", first.Duration)
	}
	if want := first.StartTime.Add(60 * time.Minute); !first.EndTime.Equal(want) {
		t.Errorf("first slot EndTime = %v, want start+duration", first.EndTime)
	}
	if !first.Available {
		t.Error("provider slots are always available")
	}

	second := slots[1]
	if second.Duration != 90 {
		t.Errorf("slot without duration = %d, want default 90", second.Duration)
	}
	if second.Price != 5250 {
		t.Errorf("second slot price = %d, want 5250", second.Price)
	}

	third := slots[2]
	if third.Court.ID != "r-unknown" || third.Court.Name != "r-unknown" {
		t.Errorf("unknown resource court = %+v, want minimal court", third.Court)
	}

	for _, s := range slots {
		if s.Link == "" {
			t.Error("every slot should carry a booking link")
		}
	}
}
