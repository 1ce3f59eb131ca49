package core

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// OrActive defaults an empty status to active.
func (s Status) OrActive() Status {
	if s == "" {
		return StatusActive
	}
	return s
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)
