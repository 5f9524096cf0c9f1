package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/database/connection/datastore"
	"rollcall.io/infrastructure/database/repository/mongo"
	"rollcall.io/infrastructure/logger"
)

var attendanceOnce = sync.Once{}

var attendanceRepository AttendanceRepository

// AttendanceRepository stores one document per day and implements the
// ledger's insert-if-absent on top of a conditional upsert.
type AttendanceRepository struct {
	mongo.MongoRepository[entities.AttendanceDay]
}

func AttendanceRepo() *AttendanceRepository {
	attendanceOnce.Do(func() {
		attendanceRepository = AttendanceRepository{mongo.MongoRepository[entities.AttendanceDay]{Model: datastore.AttendanceModel}}
	})
	return &attendanceRepository
}

func studentPath(courseID string, identityID string) string {
	return fmt.Sprintf("courses.%s.students.%s", courseID, identityID)
}

// InsertIfAbsent sets the record only where the day document lacks it. When
// the filter misses, the upsert collides with the unique date index; that
// collision is retried once because it can also come from a concurrent first
// write for a different key creating the day document.
func (repo *AttendanceRepository) InsertIfAbsent(ctx context.Context, key entities.AttendanceKey, record entities.AttendanceRecord) (bool, error) {
	path := studentPath(key.CourseID, key.IdentityID)
	filter := bson.M{"date": key.Date, path: bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{path: record}}

	for attempt := 0; attempt < 2; attempt++ {
		_, err := repo.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil {
			return true, nil
		}
		if !driver.IsDuplicateKeyError(err) {
			logger.Error("mongo error occured while marking attendance", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "key",
				Data: key,
			})
			return false, apperrors.StoreError("InsertIfAbsent", err)
		}
	}
	return false, nil
}

func (repo *AttendanceRepository) day(ctx context.Context, date string) (*entities.AttendanceDay, error) {
	day, err := repo.FindOneByFilter(ctx, bson.M{"date": date})
	if errors.Is(err, apperrors.ErrNotFound) {
		return &entities.AttendanceDay{Date: date}, nil
	}
	return day, err
}

func (repo *AttendanceRepository) ByDate(ctx context.Context, date string) (map[string]map[string]entities.AttendanceRecord, error) {
	day, err := repo.day(ctx, date)
	if err != nil {
		return nil, err
	}
	out := map[string]map[string]entities.AttendanceRecord{}
	for course, attendance := range day.Courses {
		students := attendance.Students
		if students == nil {
			students = map[string]entities.AttendanceRecord{}
		}
		out[course] = students
	}
	return out, nil
}

func (repo *AttendanceRepository) ByDateAndCourse(ctx context.Context, date string, courseID string) (map[string]entities.AttendanceRecord, error) {
	day, err := repo.day(ctx, date)
	if err != nil {
		return nil, err
	}
	students := day.Courses[courseID].Students
	if students == nil {
		students = map[string]entities.AttendanceRecord{}
	}
	return students, nil
}

func (repo *AttendanceRepository) ByDateAndIdentity(ctx context.Context, date string, identityID string) (map[string]entities.AttendanceRecord, error) {
	day, err := repo.day(ctx, date)
	if err != nil {
		return nil, err
	}
	out := map[string]entities.AttendanceRecord{}
	for course, attendance := range day.Courses {
		if record, ok := attendance.Students[identityID]; ok {
			out[course] = record
		}
	}
	return out, nil
}
