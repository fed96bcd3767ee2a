// Package catalog holds the static place dataset the app is built around:
// locations, attractions, hotels, restaurants, transports, and categories.
// The dataset is embedded as YAML, loaded once at startup, and never mutated.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Coordinates struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

type OpeningHours struct {
	Open  string   `yaml:"open" json:"open"`
	Close string   `yaml:"close" json:"close"`
	Days  []string `yaml:"days" json:"days"`
}

type Location struct {
	ID               string        `yaml:"id" json:"id"`
	Name             string        `yaml:"name" json:"name"`
	Description      string        `yaml:"description" json:"description"`
	ShortDescription string        `yaml:"shortDescription" json:"shortDescription"`
	HistoricalInfo   string        `yaml:"historicalInfo" json:"historicalInfo"`
	Image            string        `yaml:"image" json:"image"`
	Category         string        `yaml:"category" json:"category"`
	Tags             []string      `yaml:"tags" json:"tags"`
	Rating           float64       `yaml:"rating" json:"rating"`
	Reviews          int           `yaml:"reviews" json:"reviews"`
	Coordinates      Coordinates   `yaml:"coordinates" json:"coordinates"`
	OpeningHours     *OpeningHours `yaml:"openingHours" json:"openingHours,omitempty"`
	Price            int           `yaml:"price" json:"price,omitempty"`
	Currency         string        `yaml:"currency" json:"currency,omitempty"`
}

type Attraction struct {
	ID             string        `yaml:"id" json:"id"`
	Name           string        `yaml:"name" json:"name"`
	Description    string        `yaml:"description" json:"description"`
	HistoricalInfo string        `yaml:"historicalInfo" json:"historicalInfo"`
	Image          string        `yaml:"image" json:"image"`
	Rating         float64       `yaml:"rating" json:"rating"`
	Reviews        int           `yaml:"reviews" json:"reviews"`
	Price          int           `yaml:"price" json:"price"`
	Currency       string        `yaml:"currency" json:"currency"`
	Address        string        `yaml:"address" json:"address"`
	OpeningHours   *OpeningHours `yaml:"openingHours" json:"openingHours,omitempty"`
	Coordinates    Coordinates   `yaml:"coordinates" json:"coordinates"`
}

type Hotel struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Image       string      `yaml:"image" json:"image"`
	Rating      float64     `yaml:"rating" json:"rating"`
	Reviews     int         `yaml:"reviews" json:"reviews"`
	Price       int         `yaml:"price" json:"price"`
	Currency    string      `yaml:"currency" json:"currency"`
	Address     string      `yaml:"address" json:"address"`
	Amenities   []string    `yaml:"amenities" json:"amenities"`
	Coordinates Coordinates `yaml:"coordinates" json:"coordinates"`
}

type Restaurant struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	Image        string        `yaml:"image" json:"image"`
	Rating       float64       `yaml:"rating" json:"rating"`
	Reviews      int           `yaml:"reviews" json:"reviews"`
	PriceRange   string        `yaml:"priceRange" json:"priceRange"`
	Cuisine      []string      `yaml:"cuisine" json:"cuisine"`
	Address      string        `yaml:"address" json:"address"`
	OpeningHours *OpeningHours `yaml:"openingHours" json:"openingHours,omitempty"`
	Coordinates  Coordinates   `yaml:"coordinates" json:"coordinates"`
}

type Transport struct {
	ID          string `yaml:"id" json:"id"`
	Type        string `yaml:"type" json:"type"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Image       string `yaml:"image" json:"image"`
	Price       int    `yaml:"price" json:"price"`
	Currency    string `yaml:"currency" json:"currency"`
}

type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
	Count       int    `yaml:"count" json:"count"`
}

// Catalog is the loaded dataset with id-indexed lookups. Immutable after Load.
type Catalog struct {
	locations   []Location
	attractions []Attraction
	hotels      []Hotel
	restaurants []Restaurant
	transports  []Transport
	categories  []Category

	locationByID   map[string]int
	attractionByID map[string]int
	hotelByID      map[string]int
	restaurantByID map[string]int
}

type dataset struct {
	Locations   []Location   `yaml:"locations"`
	Attractions []Attraction `yaml:"attractions"`
	Hotels      []Hotel      `yaml:"hotels"`
	Restaurants []Restaurant `yaml:"restaurants"`
	Transports  []Transport  `yaml:"transports"`
	Categories  []Category   `yaml:"categories"`
}

// Load parses the embedded dataset. It fails on duplicate ids within a
// collection or an empty location list, since recognition picks from it.
func Load() (*Catalog, error) {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading embedded dataset: %w", err)
	}

	var ds dataset
	for _, e := range entries {
		raw, err := dataFS.ReadFile("data/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		var part dataset
		if err := yaml.Unmarshal(raw, &part); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		ds.Locations = append(ds.Locations, part.Locations...)
		ds.Attractions = append(ds.Attractions, part.Attractions...)
		ds.Hotels = append(ds.Hotels, part.Hotels...)
		ds.Restaurants = append(ds.Restaurants, part.Restaurants...)
		ds.Transports = append(ds.Transports, part.Transports...)
		ds.Categories = append(ds.Categories, part.Categories...)
	}

	if len(ds.Locations) == 0 {
		return nil, fmt.Errorf("dataset contains no locations")
	}

	c := &Catalog{
		locations:   ds.Locations,
		attractions: ds.Attractions,
		hotels:      ds.Hotels,
		restaurants: ds.Restaurants,
		transports:  ds.Transports,
		categories:  ds.Categories,
	}

	if c.locationByID, err = index(ds.Locations, func(l Location) string { return l.ID }); err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	if c.attractionByID, err = index(ds.Attractions, func(a Attraction) string { return a.ID }); err != nil {
		return nil, fmt.Errorf("attractions: %w", err)
	}
	if c.hotelByID, err = index(ds.Hotels, func(h Hotel) string { return h.ID }); err != nil {
		return nil, fmt.Errorf("hotels: %w", err)
	}
	if c.restaurantByID, err = index(ds.Restaurants, func(r Restaurant) string { return r.ID }); err != nil {
		return nil, fmt.Errorf("restaurants: %w", err)
	}

	return c, nil
}

func index[T any](items []T, id func(T) string) (map[string]int, error) {
	m := make(map[string]int, len(items))
	for i, item := range items {
		key := id(item)
		if key == "" {
			return nil, fmt.Errorf("entry %d has empty id", i)
		}
		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("duplicate id %q", key)
		}
		m[key] = i
	}
	return m, nil
}

func (c *Catalog) Locations() []Location       { return c.locations }
func (c *Catalog) Attractions() []Attraction   { return c.attractions }
func (c *Catalog) Hotels() []Hotel             { return c.hotels }
func (c *Catalog) Restaurants() []Restaurant   { return c.restaurants }
func (c *Catalog) Transports() []Transport     { return c.transports }
func (c *Catalog) Categories() []Category      { return c.categories }

func (c *Catalog) Location(id string) (Location, bool) {
	i, ok := c.locationByID[id]
	if !ok {
		return Location{}, false
	}
	return c.locations[i], true
}

func (c *Catalog) Attraction(id string) (Attraction, bool) {
	i, ok := c.attractionByID[id]
	if !ok {
		return Attraction{}, false
	}
	return c.attractions[i], true
}

func (c *Catalog) Hotel(id string) (Hotel, bool) {
	i, ok := c.hotelByID[id]
	if !ok {
		return Hotel{}, false
	}
	return c.hotels[i], true
}

func (c *Catalog) Restaurant(id string) (Restaurant, bool) {
	i, ok := c.restaurantByID[id]
	if !ok {
		return Restaurant{}, false
	}
	return c.restaurants[i], true
}

// HasPlace reports whether id resolves to a location or attraction,
// the entry kinds a recognition result may reference.
func (c *Catalog) HasPlace(id string) bool {
	_, lok := c.locationByID[id]
	_, aok := c.attractionByID[id]
	return lok || aok
}
