package models

// LinkCountryClick aggregates clicks on a link by originating country.
// One row per link per observed country.
type LinkCountryClick struct {
	LinkID      uint   `gorm:"primaryKey;autoIncrement:false"`
	CountryCode string `gorm:"primaryKey;size:8"`
	ClickCount  int64  `gorm:"not null;default:0"`
}

// ClickEvent is a raw click passed through the worker channel.
// It carries only what the analytics pipeline needs to attribute the click.
type ClickEvent struct {
	ShortCode string
	IPAddress string
}
