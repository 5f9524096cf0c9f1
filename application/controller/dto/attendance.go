package dto

type MarkAttendanceDTO struct {
	CourseID string `form:"courseId" validate:"required,course_key,max=64"`
	Image    []byte `json:"image" form:"-" validate:"required"`
}

// ManualMarkDTO records attendance for an identity already matched elsewhere.
type ManualMarkDTO struct {
	Date       string  `json:"date" validate:"required,ymd_date"`
	CourseID   string  `json:"courseId" validate:"required,course_key,max=64"`
	IdentityID string  `json:"identityId" validate:"required,identity_key,max=64"`
	Similarity float64 `json:"similarity" validate:"gte=-1,lte=1"`
}

type AttendanceQueryDTO struct {
	Date       string `form:"date" validate:"required,ymd_date"`
	CourseID   string `form:"courseId" validate:"omitempty,course_key"`
	IdentityID string `form:"identityId" validate:"omitempty,identity_key"`
}

type AttendanceStatsDTO struct {
	Date     string `form:"date" validate:"required,ymd_date"`
	CourseID string `form:"courseId" validate:"required,course_key"`
}
