package vnpay

import (
	"testing"

	"github.com/google/uuid"
)

func TestOrderInfoRoundTrip(t *testing.T) {
	c, l := uuid.New(), uuid.New()
	gotC, gotL, err := DecodeOrderInfo(EncodeOrderInfo(c, l))
	if err != nil || gotC != c || gotL != l {
		t.Fatalf("round trip: %s %s %v", gotC, gotL, err)
	}
}

func TestDecodeOrderInfoRejects(t *testing.T) {
	c, l := uuid.New().String(), uuid.New().String()
	cases := []string{
		"",
		"Thanh toan khoa hoc",
		"CMv2 course " + c + " learner " + l,
		"CMv1 learner " + l + " course " + c,
		"CMv1 course " + c + " learner",
		"CMv1 course nope learner " + l,
		"CMv1 course " + c + " learner " + l + " extra",
		"CMv1 course " + uuid.Nil.String() + " learner " + l,
	}
	for _, in := range cases {
		if _, _, err := DecodeOrderInfo(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
