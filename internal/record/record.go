// Package record defines the structured loading request built from chat text.
package record

import "strings"

// Record is the canonical output of extraction.
//
// All fields are optional strings while the record is being assembled.
// Before dispatch the record is normalised to uppercase and validated;
// after it has been enqueued it is treated as immutable (the queue keeps
// its own copy).
type Record struct {
	VehicleNum    string `json:"vehicle_num"`
	Destination   string `json:"destination"`
	Weight        string `json:"weight"`
	SONo          string `json:"so_no"`
	PhoneNum      string `json:"phone_num"`
	DriverLicense string `json:"driver_license"`
	DriverName    string `json:"driver_name"`
	ProductType   string `json:"product_type"`
}

// RequiredFields lists the fields that must be present before dispatch, in
// the order they are reported to the user.
var RequiredFields = []string{"phone_num", "driver_name", "driver_license", "vehicle_num", "weight", "so_no"}

var fieldLabels = map[string]string{
	"phone_num":      "Phone Number",
	"driver_name":    "Driver Name",
	"driver_license": "Driver License",
	"vehicle_num":    "Vehicle Number",
	"weight":         "Weight",
	"so_no":          "SO Number",
}

// Label returns the human-readable name of a field, or the field name itself
// when no label is known.
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// Get returns a field value by wire name.
func (r Record) Get(field string) string {
	switch field {
	case "vehicle_num":
		return r.VehicleNum
	case "destination":
		return r.Destination
	case "weight":
		return r.Weight
	case "so_no":
		return r.SONo
	case "phone_num":
		return r.PhoneNum
	case "driver_license":
		return r.DriverLicense
	case "driver_name":
		return r.DriverName
	case "product_type":
		return r.ProductType
	}
	return ""
}

// Upper returns a copy with every field converted to uppercase.
func (r Record) Upper() Record {
	return Record{
		VehicleNum:    strings.ToUpper(r.VehicleNum),
		Destination:   strings.ToUpper(r.Destination),
		Weight:        strings.ToUpper(r.Weight),
		SONo:          strings.ToUpper(r.SONo),
		PhoneNum:      strings.ToUpper(r.PhoneNum),
		DriverLicense: strings.ToUpper(r.DriverLicense),
		DriverName:    strings.ToUpper(r.DriverName),
		ProductType:   strings.ToUpper(r.ProductType),
	}
}

// Missing returns the required fields that are empty after trimming,
// in RequiredFields order.
func (r Record) Missing() []string {
	var missing []string
	for _, f := range RequiredFields {
		if strings.TrimSpace(r.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// FillFrom copies every non-empty field of other into r.
func (r *Record) FillFrom(other Record) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.VehicleNum, other.VehicleNum)
	set(&r.Destination, other.Destination)
	set(&r.Weight, other.Weight)
	set(&r.SONo, other.SONo)
	set(&r.PhoneNum, other.PhoneNum)
	set(&r.DriverLicense, other.DriverLicense)
	set(&r.DriverName, other.DriverName)
	set(&r.ProductType, other.ProductType)
}
