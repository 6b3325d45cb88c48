package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) repository.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	model := courseModel{
		Code:     course.Code,
		Title:    course.Title,
		AuthorID: course.AuthorID,
		TutorID:  course.TutorID,
		Active:   course.Active,
	}
	if err := getTx(ctx, r.db).Create(&model).Error; err != nil {
		return apperrors.NewPersistenceError(err)
	}
	course.ID = model.ID
	return nil
}

func (r *courseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	var model courseModel
	if err := getTx(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFoundOr(err, "course", map[string]any{"course_id": id})
	}
	course := model.toDomain()
	return &course, nil
}

func (r *courseRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result := getTx(ctx, r.db).Model(&courseModel{}).Where("id = ?", id).Update("active", active)
	return requireOneRow(result, "course", map[string]any{"course_id": id})
}

func (r *courseRepository) ListNames(ctx context.Context) ([]domain.CourseName, error) {
	var models []courseModel
	if err := getTx(ctx, r.db).Where("active = ?", true).Order("code ASC").Find(&models).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	names := make([]domain.CourseName, 0, len(models))
	for _, m := range models {
		names = append(names, domain.CourseName{ID: m.ID, Code: m.Code, Title: m.Title})
	}
	return names, nil
}

type courseNamesRow struct {
	Course     courseModel `gorm:"embedded"`
	AuthorName string
	TutorName  string
}

func (r *courseRepository) ListWithNames(ctx context.Context) ([]domain.CourseWithNames, error) {
	var rows []courseNamesRow
	err := getTx(ctx, r.db).
		Table("courses AS c").
		Select("c.*, a.name AS author_name, tu.name AS tutor_name").
		Joins("JOIN users a ON a.id = c.author_id").
		Joins("JOIN users tu ON tu.id = c.tutor_id").
		Order("c.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	courses := make([]domain.CourseWithNames, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, domain.CourseWithNames{
			Course:     row.Course.toDomain(),
			AuthorName: row.AuthorName,
			TutorName:  row.TutorName,
		})
	}
	return courses, nil
}

func (m courseModel) toDomain() domain.Course {
	return domain.Course{
		ID:       m.ID,
		Code:     m.Code,
		Title:    m.Title,
		AuthorID: m.AuthorID,
		TutorID:  m.TutorID,
		Active:   m.Active,
	}
}
