package constants

// NSQ topics
const (
	// Published after a finalized trip lands in the remote store
	TopicTripCompleted = "trip.completed"

	// Published when a recording session discovers a new city
	TopicCityDiscovered = "city.discovered"
)
