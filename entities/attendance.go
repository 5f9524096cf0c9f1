package entities

import "time"

const AttendanceStatusMarked = "marked"

// AttendanceRecord is the value stored under (date, course, identity).
type AttendanceRecord struct {
	IdentityID  string    `bson:"roll" json:"roll"`
	DisplayName string    `bson:"name" json:"name"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Status      string    `bson:"status" json:"status"`
	Similarity  float64   `bson:"similarity" json:"similarity"`
}

type CourseAttendance struct {
	Students map[string]AttendanceRecord `bson:"students" json:"students"`
}

// AttendanceDay is the physical layout: one document per date holding
// course -> identity -> record.
type AttendanceDay struct {
	Date    string                      `bson:"date" json:"date"`
	Courses map[string]CourseAttendance `bson:"courses" json:"courses"`
}

func (model AttendanceDay) ParseModel() any {
	if model.Courses == nil {
		model.Courses = map[string]CourseAttendance{}
	}
	return &model
}

// AttendanceKey is the idempotency key of one attendance write.
type AttendanceKey struct {
	Date       string
	CourseID   string
	IdentityID string
}
