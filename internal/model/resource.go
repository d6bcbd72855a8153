package model

// ResourceRecord is a unit of capacity events can be assigned to.
// A resource may carry its own calendar; the scheduling core does not
// level resources, but assignment changes dirty the linked event so
// downstream consumers observe a consistent schedule.
type ResourceRecord struct {
	ID         ResourceID
	Name       string
	CalendarID CalendarID
}

// Clone returns a copy of the record.
func (r *ResourceRecord) Clone() *ResourceRecord {
	c := *r
	return &c
}

// AssignmentRecord links an event to a resource at a utilization level.
// Units is a percentage; 100 means full allocation.
type AssignmentRecord struct {
	ID       AssignmentID
	EventID  EventID
	Resource ResourceID
	Units    int
}

// Clone returns a copy of the record.
func (a *AssignmentRecord) Clone() *AssignmentRecord {
	c := *a
	return &c
}
