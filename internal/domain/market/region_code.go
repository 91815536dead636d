package market

// RegionCode is a read-only reference table entry mapping a province and
// district to the 5-digit administrative code used for transaction lookups.
type RegionCode struct {
	Code     string `gorm:"type:varchar(5);primaryKey"`
	Province string `gorm:"type:varchar(30);not null"`
	District string `gorm:"type:varchar(50);not null;index"`
}

// TableName returns the table name for GORM
func (RegionCode) TableName() string {
	return "region_codes"
}

// FullName returns the combined province and district name
func (r *RegionCode) FullName() string {
	return r.Province + " " + r.District
}
