package queue

// OTPEmailQueueName is the durable queue carrying one-time code email
// requests from the auth service to the delivery worker.
const OTPEmailQueueName = "otp.email"

// OTPEmailEvent asks the delivery worker to email a one-time code.
// MessageID is unique per request so the worker can deduplicate broker
// redeliveries and never send the same code twice.
type OTPEmailEvent struct {
	MessageID string `json:"message_id"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	Purpose   string `json:"purpose"`
}
