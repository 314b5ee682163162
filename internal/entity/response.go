package entity

var PongFrame = []byte(`{"type":"pong"}`)

type DeliveryReport struct {
	Delivered int
	Failed    []Recipient
}

func (r *DeliveryReport) Merge(other DeliveryReport) {
	r.Delivered += other.Delivered
	r.Failed = append(r.Failed, other.Failed...)
}

type DeliveryResponse struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

func (r DeliveryReport) Response() DeliveryResponse {
	return DeliveryResponse{Delivered: r.Delivered, Failed: len(r.Failed)}
}

type HealthResponse struct {
	Status string `json:"status"`
	RegistryStats
}
