package catalog

import "testing"

func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	if got := len(c.Locations()); got != 3 {
		t.Errorf("locations = %d, want 3", got)
	}
	if got := len(c.Attractions()); got != 3 {
		t.Errorf("attractions = %d, want 3", got)
	}
	if got := len(c.Hotels()); got != 3 {
		t.Errorf("hotels = %d, want 3", got)
	}
	if got := len(c.Restaurants()); got != 3 {
		t.Errorf("restaurants = %d, want 3", got)
	}
	if got := len(c.Transports()); got != 3 {
		t.Errorf("transports = %d, want 3", got)
	}
	if got := len(c.Categories()); got != 4 {
		t.Errorf("categories = %d, want 4", got)
	}
}

func TestLocationLookup(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	loc, ok := c.Location("jemaa-el-fna")
	if !ok {
		t.Fatal("expected jemaa-el-fna to resolve")
	}
	if loc.Name != "Jemaa el-Fna" {
		t.Errorf("name = %q, want %q", loc.Name, "Jemaa el-Fna")
	}
	if loc.Coordinates.Latitude == 0 || loc.Coordinates.Longitude == 0 {
		t.Error("expected coordinates to be set")
	}

	if _, ok := c.Location("nonexistent-id"); ok {
		t.Error("expected unknown id to miss")
	}
}

func TestHasPlace(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	for _, id := range []string{"hassan-tower", "majorelle-garden"} {
		if !c.HasPlace(id) {
			t.Errorf("HasPlace(%q) = false, want true", id)
		}
	}
	if c.HasPlace("royal-mansour") {
		t.Error("hotels are not scannable places")
	}
	if c.HasPlace("") {
		t.Error("empty id must not resolve")
	}
}

func TestIndexRejectsDuplicates(t *testing.T) {
	_, err := index([]Location{{ID: "a"}, {ID: "a"}}, func(l Location) string { return l.ID })
	if err == nil {
		t.Fatal("expected duplicate id error")
	}

	_, err = index([]Location{{ID: ""}}, func(l Location) string { return l.ID })
	if err == nil {
		t.Fatal("expected empty id error")
	}
}
