package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var syntheticCreatedAt = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

// SyntheticReceipt builds the deterministic stand-in receipt for an order.
// The same order always produces the same receipt.
func SyntheticReceipt(order Order) *Payment {
	seed := "https://learnkit.dev/payments/" + strings.Join(order.CourseIDs, ",") + "/" + order.CouponCode
	return &Payment{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String(),
		OrderID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed+"/order")).String(),
		Amount:    order.Amount,
		Status:    StatusDemo,
		CreatedAt: syntheticCreatedAt,
	}
}

// SyntheticHistory is the fixture payment history served in demo mode.
func SyntheticHistory() []Payment {
	return []Payment{
		*SyntheticReceipt(Order{CourseIDs: []string{"demo-course-1"}, Amount: 19000}),
		*SyntheticReceipt(Order{CourseIDs: []string{"demo-course-2"}, CouponCode: "WELCOME10", Amount: 26100}),
	}
}
