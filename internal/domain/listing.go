package domain

type Listing struct {
	ID             int64
	Landlord       string
	Title          string
	Description    string
	Location       string
	Price          int64 // recurring rent, smallest currency unit
	Deposit        int64
	Size           int
	Rooms          int
	Bathrooms      int
	Floor          int
	TotalFloors    int
	ContractLength int   // months
	MoveInDate     int64 // unix seconds
	Amenities      []string
	IsAvailable    bool
	IsVerified     bool
	CreatedAt      int64
	UpdatedAt      int64
}

type Platform struct {
	Authority     string
	TotalListings int64
	TotalRentals  int64
	// TotalVolume sums every amount moved (or booked) through the engine
	// in the listing's native unit; mixed-currency sums are nominal only.
	TotalVolume int64
}
