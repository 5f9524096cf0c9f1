package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentPath(t *testing.T) {
	assert.Equal(t, "courses.CS101.students.r01", studentPath("CS101", "r01"))
}
