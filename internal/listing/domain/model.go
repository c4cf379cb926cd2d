package domain

import "time"

type ListingState string

const (
	StateNew  ListingState = "new"
	StateUsed ListingState = "used"
)

// ListingStates lists the accepted listing conditions in display order.
var ListingStates = []ListingState{StateNew, StateUsed}

type VehicleType string

const (
	TypeSedan       VehicleType = "sedan"
	TypeHatchback   VehicleType = "hatchback"
	TypeCoupe       VehicleType = "coupe"
	TypeConvertible VehicleType = "convertible"
	TypeWagon       VehicleType = "wagon"
	TypeSUV         VehicleType = "suv"
	TypeVan         VehicleType = "van"
	TypeMinivan     VehicleType = "minivan"
	TypePickup      VehicleType = "pickup"
	TypeTruck       VehicleType = "truck"
	TypeTrailer     VehicleType = "trailer"
	TypeBus         VehicleType = "bus"
	TypeMotorcycle  VehicleType = "motorcycle"
)

var VehicleTypes = []VehicleType{
	TypeSedan, TypeHatchback, TypeCoupe, TypeConvertible, TypeWagon, TypeSUV, TypeVan,
	TypeMinivan, TypePickup, TypeTruck, TypeTrailer, TypeBus, TypeMotorcycle,
}

// Listing is a vehicle offered for sale. Photo holds the hosted image URL once the
// listing has been committed.
type Listing struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id,omitempty"`
	State        ListingState `json:"state"`
	Price        float64      `json:"price"`
	Manufacturer string       `json:"manufacturer"`
	Model        string       `json:"model"`
	Type         VehicleType  `json:"type"`
	Photo        string       `json:"photo"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ListingDraft is a payload that passed every field check but has not been committed yet.
type ListingDraft struct {
	State        ListingState
	Price        float64
	Manufacturer string
	Model        string
	Type         VehicleType
	Photo        string
}

// Apply copies the draft fields onto l, leaving identity and timestamps untouched.
func (d *ListingDraft) Apply(l *Listing) {
	l.State = d.State
	l.Price = d.Price
	l.Manufacturer = d.Manufacturer
	l.Model = d.Model
	l.Type = d.Type
	l.Photo = d.Photo
}
