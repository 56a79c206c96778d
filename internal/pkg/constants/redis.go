package constants

// Redis key formats
const (
	// Recorder session store, one set of keys per owner.
	// These three keys together are the durable session state.
	KeySessionRoute    = "motowave:session:%s:route"    // Format: motowave:session:{owner_id}:route
	KeySessionDistance = "motowave:session:%s:distance" // Format: motowave:session:{owner_id}:distance
	KeySessionCities   = "motowave:session:%s:cities"   // Format: motowave:session:{owner_id}:cities

	// Reverse-geocode result cache, keyed by geohash cell
	KeyGeocodeCache = "motowave:geocode:%s" // Format: motowave:geocode:{geohash}
)
