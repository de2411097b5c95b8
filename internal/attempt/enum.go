package attempt

type Status string

const (
	StatusDoing     Status = "DOING"
	StatusSubmitted Status = "SUBMITTED"
)
