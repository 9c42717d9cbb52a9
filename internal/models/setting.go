package models

// Setting is key/value policy storage (withdrawal minimum, payout toggles).
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`
	ValueJSON JSON   `gorm:"type:json" json:"value"`
}

// TableName sets the table name.
func (Setting) TableName() string {
	return "settings"
}
