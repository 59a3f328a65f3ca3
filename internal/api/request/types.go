package request

// EnqueueRequest is the request body for adding participants to a queue
type EnqueueRequest struct {
	Participants []string `json:"participants"`
}
