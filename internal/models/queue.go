package models

// QueueType selects the delivery channel an entry is pending signature
// through.
type QueueType string

const (
	QueueCourier QueueType = "courier"
	QueuePoint   QueueType = "point"
)

func (q QueueType) Valid() bool {
	return q == QueueCourier || q == QueuePoint
}

// QueueState carries the pending flags of an entry. At most one flag is true
// at a time; Set maintains that.
type QueueState struct {
	CourierPending bool `json:"courierPending"`
	PointPending   bool `json:"pointPending"`

	// CourierPlannedDate is an optional ISO date the courier pickup is
	// planned for. Only meaningful while CourierPending is true.
	CourierPlannedDate string `json:"courierPlannedDate,omitempty"`
}

// Set updates one pending flag. Raising a flag lowers the other one; the
// planned date survives only while the courier flag stays up.
func (q *QueueState) Set(t QueueType, pending bool) {
	switch t {
	case QueueCourier:
		q.CourierPending = pending
		if pending {
			q.PointPending = false
		}
	case QueuePoint:
		q.PointPending = pending
		if pending {
			q.CourierPending = false
		}
	}
	if !q.CourierPending {
		q.CourierPlannedDate = ""
	}
}

// Clear lowers both flags.
func (q *QueueState) Clear() {
	q.CourierPending = false
	q.PointPending = false
	q.CourierPlannedDate = ""
}

// Pending reports whether the given type's flag is up.
func (q QueueState) Pending(t QueueType) bool {
	switch t {
	case QueueCourier:
		return q.CourierPending
	case QueuePoint:
		return q.PointPending
	}
	return false
}

// Active returns the currently pending type, if any.
func (q QueueState) Active() (QueueType, bool) {
	switch {
	case q.CourierPending:
		return QueueCourier, true
	case q.PointPending:
		return QueuePoint, true
	}
	return "", false
}
