package vnpay

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Order info is the only free-text field the gateway echoes back, so the
// course and learner ride in it as "CMv1 course <uuid> learner <uuid>".
// The leading token versions the layout.
const orderInfoVersion = "CMv1"

func EncodeOrderInfo(courseID, learnerID uuid.UUID) string {
	return fmt.Sprintf("%s course %s learner %s", orderInfoVersion, courseID, learnerID)
}

// DecodeOrderInfo is the inverse of EncodeOrderInfo. Any deviation from the
// layout is an error.
func DecodeOrderInfo(s string) (courseID, learnerID uuid.UUID, err error) {
	fields := strings.Fields(s)
	if len(fields) != 5 || fields[0] != orderInfoVersion || fields[1] != "course" || fields[3] != "learner" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("order info: unexpected layout")
	}
	if courseID, err = uuid.Parse(fields[2]); err != nil || courseID == uuid.Nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("order info: bad course id")
	}
	if learnerID, err = uuid.Parse(fields[4]); err != nil || learnerID == uuid.Nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("order info: bad learner id")
	}
	return courseID, learnerID, nil
}
