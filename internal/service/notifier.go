package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers the outbound side effects of the request lifecycle:
// pinging the supervisor on escalation and calling the customer back after
// a resolution. Delivery is fire-and-forget; implementations log failures
// and never propagate them into the calling transaction.
type Notifier interface {
	NotifySupervisor(question string, requestID uuid.UUID, customerPhone string)
	CallCustomerBack(customerPhone, answer, originalQuestion string)
}

// LogNotifier simulates delivery by writing structured log lines. Real
// SMS/telephony integrations live behind the same interface.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifySupervisor(question string, requestID uuid.UUID, customerPhone string) {
	n.logger.Info("[simulated] texting supervisor",
		zap.String("message", "Hey, I need help answering: "+question),
		zap.String("request_id", requestID.String()),
		zap.String("customer_phone", customerPhone),
	)
}

func (n *LogNotifier) CallCustomerBack(customerPhone, answer, originalQuestion string) {
	n.logger.Info("[simulated] calling customer back",
		zap.String("customer_phone", customerPhone),
		zap.String("message", answer),
		zap.String("original_question", originalQuestion),
	)
}
