package models

import (
	"time"

	"github.com/mattn/go-nulltype"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryNature   Category = "Natureza"
	CategoryCulture  Category = "Cultura"
	CategoryLeisure  Category = "Lazer"
	CategoryCommerce Category = "Comércio"
	CategoryFood     Category = "Gastronomia"
)

// Categories lists every catalog category in display order.
func Categories() []Category {
	return []Category{
		CategoryNature,
		CategoryCulture,
		CategoryLeisure,
		CategoryCommerce,
		CategoryFood,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Location is a point of interest in the island catalog. Rows are written
// once at seed time and treated as immutable afterwards.
type Location struct {
	ID          uint                `json:"-" gorm:"primaryKey"`
	Slug        string              `json:"id" binding:"required" gorm:"uniqueIndex"`
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Category    Category            `json:"category" binding:"required"`
	Image       string              `json:"image"`
	Lat         float64             `json:"lat" binding:"required"`
	Lng         float64             `json:"lng" binding:"required"`
	Hours       nulltype.NullString `json:"hours,omitempty"`
	Phone       nulltype.NullString `json:"phone,omitempty"`
	Website     nulltype.NullString `json:"website,omitempty"`

	CreatedAt time.Time `json:"-"`
}

func (l Location) TableName() string {
	return "locations"
}

func FindLocationBySlug(db *gorm.DB, slug string) (Location, error) {
	var location Location
	err := db.Where(&Location{Slug: slug}).First(&location).Error
	return location, err
}

func ListLocations(db *gorm.DB) ([]Location, error) {
	var locations []Location
	err := db.Order("id").Find(&locations).Error
	return locations, err
}

func CountLocations(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Location{}).Count(&count).Error
	return count, err
}
