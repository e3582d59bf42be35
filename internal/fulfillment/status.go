package fulfillment

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusCancelled Status = "CANCELLED"
	StatusConfirmed Status = "CONFIRMED" // stock-outs only
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusProcessed: true, StatusCancelled: true, StatusConfirmed: true},
	StatusProcessed: {},
	StatusCancelled: {},
	StatusConfirmed: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
