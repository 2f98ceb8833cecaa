package http

type SubmitReviewRequest struct {
	Rating               int      `json:"rating"`
	ReviewText           string   `json:"reviewText"`
	Photos               []string `json:"photos"`
	EventType            string   `json:"eventType"`
	VenueQualityRating   *int     `json:"venueQualityRating"`
	ServiceQualityRating *int     `json:"serviceQualityRating"`
	ValueRating          *int     `json:"valueRating"`
	CleanlinessRating    *int     `json:"cleanlinessRating"`
}
